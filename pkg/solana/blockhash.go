package solana

import (
	"context"
	"sync"
	"time"

	sln "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// blockhashCache caches the latest blockhash for a short TTL so that several
// transactions submitted back to back do not each hit the RPC node.
type blockhashCache struct {
	mu     sync.Mutex
	hash   sln.Hash
	expiry time.Time
	ttl    time.Duration
}

func newBlockhashCache(ttl time.Duration) *blockhashCache {
	return &blockhashCache{ttl: ttl}
}

func (c *blockhashCache) get(ctx context.Context, client *rpc.Client) (sln.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.expiry) {
		return c.hash, nil
	}

	block, err := client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return sln.Hash{}, err
	}

	c.hash = block.Value.Blockhash
	c.expiry = time.Now().Add(c.ttl)

	return c.hash, nil
}
