package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	FrontendURL                   string `mapstructure:"FRONTEND_URL"`
	RazorpayKeyID                 string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret             string `mapstructure:"RAZORPAY_KEY_SECRET"`
	GoogleClientID                string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret            string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL             string `mapstructure:"GOOGLE_REDIRECT_URL"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	AdminEmail                    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword                 string `mapstructure:"ADMIN_PASSWORD"`
	EnableCORS                    bool   `mapstructure:"ENABLE_CORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "aoacon.db")
	viper.SetDefault("FRONTEND_URL", "https://aoacon2026.com")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://127.0.0.1:8080/auth/google/callback")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("RAZORPAY_KEY_ID")
	viper.BindEnv("RAZORPAY_KEY_SECRET")
	viper.BindEnv("GOOGLE_CLIENT_ID")
	viper.BindEnv("GOOGLE_CLIENT_SECRET")
	viper.BindEnv("GOOGLE_REDIRECT_URL")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("ADMIN_EMAIL")
	viper.BindEnv("ADMIN_PASSWORD")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
