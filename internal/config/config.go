// Package config carrega a configuração do serviço a partir de variáveis de
// ambiente (com .env opcional em desenvolvimento) e concentra as constantes
// de tempo do fluxo de atendimento.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config guarda toda a configuração do processo.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Telegram TelegramConfig
}

// AppConfig é a configuração base da aplicação.
type AppConfig struct {
	Env       string // local / prod
	HTTPAddr  string // endereço de escuta da API
	LogLevel  string // debug / info / warn / error
	LogFile   string // vazio = somente stdout
	JWTSecret string

	// QueueEnabled liga a fila simulada antes do chat com mediador.
	QueueEnabled bool
	// ConnectProbability é a chance (0..1) de a fila resolver em conexão
	// em vez de estourar o tempo de espera.
	ConnectProbability float64
}

// PostgresConfig aponta para o banco principal.
type PostgresConfig struct {
	DSN string
}

// RedisConfig aponta para o Redis (fila de mediação, rate limit, pub/sub).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SMTPConfig habilita a entrega real de e-mails quando preenchida.
// Vazia, o serviço apenas registra a notificação na caixa de saída.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// TelegramConfig habilita os alertas para a equipe de mediadores.
type TelegramConfig struct {
	BotToken    string
	StaffChatID int64
}

// Load lê a configuração do ambiente. Toda chave tem um padrão utilizável
// em desenvolvimento local, exceto o segredo do JWT em produção.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "local")
	v.SetDefault("app.http_addr", ":8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("app.jwt_secret", "")
	v.SetDefault("app.queue_enabled", true)
	v.SetDefault("app.connect_probability", 0.8)
	v.SetDefault("postgres.dsn",
		"host=localhost user=consumidor password=consumidor dbname=aloconsumidor port=5432 sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.staff_chat_id", 0)

	cfg := &Config{
		App: AppConfig{
			Env:                v.GetString("app.env"),
			HTTPAddr:           v.GetString("app.http_addr"),
			LogLevel:           v.GetString("app.log_level"),
			LogFile:            v.GetString("app.log_file"),
			JWTSecret:          v.GetString("app.jwt_secret"),
			QueueEnabled:       v.GetBool("app.queue_enabled"),
			ConnectProbability: v.GetFloat64("app.connect_probability"),
		},
		Postgres: PostgresConfig{DSN: v.GetString("postgres.dsn")},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		SMTP: SMTPConfig{
			Host: v.GetString("smtp.host"),
			Port: v.GetInt("smtp.port"),
			User: v.GetString("smtp.user"),
			Pass: v.GetString("smtp.pass"),
			From: v.GetString("smtp.from"),
		},
		Telegram: TelegramConfig{
			BotToken:    v.GetString("telegram.bot_token"),
			StaffChatID: v.GetInt64("telegram.staff_chat_id"),
		},
	}

	if cfg.App.Env == "prod" && cfg.App.JWTSecret == "" {
		return nil, fmt.Errorf("APP_JWT_SECRET é obrigatório em produção")
	}
	if cfg.App.JWTSecret == "" {
		cfg.App.JWTSecret = "dev-only-secret"
	}
	if cfg.App.ConnectProbability < 0 || cfg.App.ConnectProbability > 1 {
		return nil, fmt.Errorf("APP_CONNECT_PROBABILITY fora do intervalo [0,1]: %v",
			cfg.App.ConnectProbability)
	}
	return cfg, nil
}
