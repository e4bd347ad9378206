package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Profile describes the vendor printed on every invoice and the payee
// encoded in the payment code.
type Profile struct {
	Business BusinessProfile `mapstructure:"business"`
	Payment  PaymentProfile  `mapstructure:"payment"`
}

type BusinessProfile struct {
	Name        string `mapstructure:"name"`
	ClosingLine string `mapstructure:"closing_line"`
}

type PaymentProfile struct {
	Scheme     string `mapstructure:"scheme"`
	PayeeID    string `mapstructure:"payee_id"`
	PayeeName  string `mapstructure:"payee_name"`
	PayeeLabel string `mapstructure:"payee_label"`
	Currency   string `mapstructure:"currency"`
	MaxVersion int    `mapstructure:"max_version"`
}

func DefaultProfile() Profile {
	return Profile{
		Business: BusinessProfile{
			Name:        "Shree Guru Construction Materials",
			ClosingLine: "Thank you for your business!",
		},
		Payment: PaymentProfile{
			Scheme:     "upi",
			PayeeID:    "merchant@upi",
			PayeeName:  "Shree Guru Construction Materials",
			PayeeLabel: "UPI ID",
			Currency:   "INR",
			MaxVersion: 40,
		},
	}
}

type ProfileHolder struct {
	current atomic.Value // holds Profile
}

// StaticProfile returns a holder that never reloads.
func StaticProfile(p Profile) *ProfileHolder {
	holder := &ProfileHolder{}
	holder.current.Store(p)
	return holder
}

func NewProfileHolder(cfg Config, log *zap.Logger) (*ProfileHolder, error) {
	log = log.Named("config.profile")
	v := viper.New()

	v.SetConfigName("billdesk")
	v.SetConfigType("yml")
	if cfg.ConfigDir != "" {
		v.AddConfigPath(cfg.ConfigDir)
	}
	v.AddConfigPath("/etc/billdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultProfile()
	v.SetDefault("business.name", defaults.Business.Name)
	v.SetDefault("business.closing_line", defaults.Business.ClosingLine)
	v.SetDefault("payment.scheme", defaults.Payment.Scheme)
	v.SetDefault("payment.payee_id", defaults.Payment.PayeeID)
	v.SetDefault("payment.payee_name", defaults.Payment.PayeeName)
	v.SetDefault("payment.payee_label", defaults.Payment.PayeeLabel)
	v.SetDefault("payment.currency", defaults.Payment.Currency)
	v.SetDefault("payment.max_version", defaults.Payment.MaxVersion)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return nil, err
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	holder := StaticProfile(profile)

	if found && cfg.WatchProfile {
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated Profile
			if err := v.Unmarshal(&updated); err != nil {
				log.Warn("profile reload failed", zap.Error(err))
				return
			}
			if err := validateProfile(updated); err != nil {
				log.Warn("invalid profile ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("profile reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *ProfileHolder) Get() Profile {
	return h.current.Load().(Profile)
}

func validateProfile(p Profile) error {
	if strings.TrimSpace(p.Business.Name) == "" {
		return errors.New("business.name cannot be empty")
	}
	if strings.TrimSpace(p.Payment.Scheme) == "" {
		return errors.New("payment.scheme cannot be empty")
	}
	if strings.TrimSpace(p.Payment.PayeeID) == "" {
		return errors.New("payment.payee_id cannot be empty")
	}
	if strings.TrimSpace(p.Payment.Currency) == "" {
		return errors.New("payment.currency cannot be empty")
	}
	if p.Payment.MaxVersion < 1 || p.Payment.MaxVersion > 40 {
		return errors.New("payment.max_version must be between 1 and 40")
	}
	return nil
}
