package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	RPCEndpoint       string `env:"RPC_ENDPOINT,required=true"`
	WalletRPCEndpoint string `env:"WALLET_RPC_ENDPOINT,required=true"`
	ContractAddress   string `env:"STAKING_CONTRACT_ADDRESS,required=true"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	ChainID           uint64 `env:"CHAIN_ID,default=137"`
	ExplorerBaseURL   string `env:"EXPLORER_BASE_URL,default=https://polygonscan.com"`
	StateDBPath       string `env:"STATE_DB_PATH,default=wallet-gateway.db"`
	ReceiptPollMS     int    `env:"RECEIPT_POLL_INTERVAL_MS,default=5000"`
	TxHistoryCap      int    `env:"TX_HISTORY_CAP,default=10"`
	ToastDedupMS      int    `env:"TOAST_DEDUP_WINDOW_MS,default=1500"`
	ModalGraceMS      int    `env:"MODAL_GRACE_DELAY_MS,default=1000"`
	RateLimitPerSec   int    `env:"RATE_LIMIT_PER_SEC,default=25"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ReceiptPollInterval() time.Duration {
	return time.Duration(c.ReceiptPollMS) * time.Millisecond
}

func (c *Config) ToastDedupWindow() time.Duration {
	return time.Duration(c.ToastDedupMS) * time.Millisecond
}

func (c *Config) ModalGraceDelay() time.Duration {
	return time.Duration(c.ModalGraceMS) * time.Millisecond
}
