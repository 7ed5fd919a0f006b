package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"giftd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "GIFTD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "GIFTD_SAVE_INTERVAL")
	viper.BindEnv("ledger.defaultCheckinPoints", "GIFTD_CHECKIN_POINTS")
	viper.BindEnv("ledger.bonusMode", "GIFTD_BONUS_MODE")
	viper.BindEnv("ledger.deliveryPolicy", "GIFTD_DELIVERY_POLICY")
	viper.BindEnv("cache.enabled", "GIFTD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "GIFTD_CACHE_SIZE")

	viper.SetDefault("ledger.bonusMode", structures.BonusModeFlat)
	viper.SetDefault("ledger.deliveryPolicy", structures.DeliveryPolicyRelaxed)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "GiftLedgerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
