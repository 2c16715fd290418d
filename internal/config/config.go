package config

import (
	"fmt"
	"time"

	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/dikabo/taxi-money-driver/pkg/mq"
	"github.com/dikabo/taxi-money-driver/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API        API          `mapstructure:"api"`
	Auth       Auth         `mapstructure:"auth"`
	Database   mysql.Config `mapstructure:"database"`
	RabbitMQ   mq.Config    `mapstructure:"rabbitmq"`
	Gateway    momo.Config  `mapstructure:"gateway"`
	Withdrawal Withdrawal   `mapstructure:"withdrawal"`
	Sweep      Sweep        `mapstructure:"sweep"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Auth struct {
	// Secret verifies the session tokens minted by the identity provider.
	Secret string `mapstructure:"secret"`
}

// Withdrawal holds payout policy. Min and Max are product policy in minor
// currency units, not protocol constants.
type Withdrawal struct {
	MinAmount int64 `mapstructure:"min_amount"`
	MaxAmount int64 `mapstructure:"max_amount"`
}

type Sweep struct {
	// PendingAge is how long a withdrawal may sit PENDING before the
	// publisher queues it for a gateway status query.
	PendingAge time.Duration `mapstructure:"pending_age"`
	Interval   time.Duration `mapstructure:"interval"`
	BatchSize  int           `mapstructure:"batch_size"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
