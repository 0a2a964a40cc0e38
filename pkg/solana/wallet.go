package solana

import (
	"context"
	"fmt"
	"log"
	"time"

	sln "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
)

const (
	confirmationTimeout = 90 * time.Second
	confirmationPoll    = 2 * time.Second
)

// Wallet holds the bot's keypair and RPC connection. It signs and submits
// transactions that arrive pre-built from the Bags API.
type Wallet struct {
	key       sln.PrivateKey
	rpcClient *rpc.Client
	blockhash *blockhashCache
	logger    *log.Logger
}

// NewWallet creates a wallet from a base58-encoded private key
func NewWallet(privateKeyBase58, rpcURL string, logger *log.Logger) (*Wallet, error) {
	key, err := sln.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Wallet{
		key:       key,
		rpcClient: rpc.New(rpcURL),
		blockhash: newBlockhashCache(20 * time.Second),
		logger:    logger,
	}, nil
}

// Address returns the wallet's public key in base58
func (w *Wallet) Address() string {
	return w.key.PublicKey().String()
}

// Balance returns the wallet's SOL balance
func (w *Wallet) Balance(ctx context.Context) (float64, error) {
	out, err := w.rpcClient.GetBalance(ctx, w.key.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return LamportsToSol(out.Value), nil
}

// SignAndSend decodes a base58 serialized transaction, refreshes its
// blockhash, signs it with the wallet key, submits it and blocks until the
// cluster confirms it.
func (w *Wallet) SignAndSend(ctx context.Context, serializedTx string) (string, error) {
	txBytes, err := base58.Decode(serializedTx)
	if err != nil {
		return "", fmt.Errorf("failed to decode base58 transaction: %w", err)
	}

	tx, err := sln.TransactionFromBytes(txBytes)
	if err != nil {
		return "", fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	hash, err := w.blockhash.get(ctx, w.rpcClient)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = hash

	if _, err := tx.Sign(func(key sln.PublicKey) *sln.PrivateKey {
		if w.key.PublicKey().Equals(key) {
			return &w.key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := w.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := w.waitForConfirmation(ctx, sig); err != nil {
		return "", err
	}

	return sig.String(), nil
}

func (w *Wallet) waitForConfirmation(ctx context.Context, sig sln.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, confirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmationPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for confirmation of %s: %w", sig, ctx.Err())
		case <-ticker.C:
			out, err := w.rpcClient.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				w.logger.Printf("Failed to fetch status for %s: %v", sig, err)
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}

			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
