package binance

import (
	"context"
	"fmt"
	"sync"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/credential"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

// Factory builds one authenticated client per bot, decrypting the bot's
// stored API credentials on first use. Clients are cached until evicted.
type Factory struct {
	decryptor credential.Decryptor
	stream    *TickerStream

	mu      sync.Mutex
	clients map[string]*Client
}

// NewFactory creates a Factory. The stream is optional; when set, every
// created client prefers streamed prices.
func NewFactory(decryptor credential.Decryptor, stream *TickerStream) *Factory {
	return &Factory{
		decryptor: decryptor,
		stream:    stream,
		clients:   make(map[string]*Client),
	}
}

// Gateway implements exchange.Factory.
func (f *Factory) Gateway(_ context.Context, b *bot.Bot) (exchange.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[b.ID]; ok {
		return client, nil
	}

	apiKey, err := f.decryptor.Decrypt(b.APIKeyCiphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt API key for bot %s: %w", b.ID, err)
	}
	secretKey, err := f.decryptor.Decrypt(b.APISecretCiphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt API secret for bot %s: %w", b.ID, err)
	}

	client := NewClient(apiKey, secretKey)
	if f.stream != nil {
		client = client.WithTickerStream(f.stream)
	}
	f.clients[b.ID] = client
	return client, nil
}

// Evict implements exchange.Factory.
func (f *Factory) Evict(botID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, botID)
}
