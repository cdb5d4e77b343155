package config

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"

	"crazzzytube/constant"
)

type Config struct {
	MinIOBucket string          `yaml:"minio_bucket"`
	App         App             `yaml:"app"`
	DB          *sql.DB         `yaml:"db"`
	Mongo       *mongo.Database `yaml:"mongo"`
	Queue       *RabbitMQ       `yaml:"rabbitmq"`
	Storage     *minio.Client   `yaml:"storage"`
	Server      Server          `yaml:"server"`
	Media       Media           `yaml:"media"`
	Auth        Auth            `yaml:"auth"`
	Telemetry   Telemetry       `yaml:"telemetry"`

	postgresDSN string
	mongoURI    string
	mongoDB     string
	minio       minioSettings
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

func (a App) IsProduction() bool {
	return a.Environment == constant.EnvironmentProduction.String()
}

func (a App) IsDevelop() bool {
	return a.Environment == constant.EnvironmentDevelop.String()
}

type Server struct {
	HttpPort        string        `yaml:"http_port"`
	Workers         int           `yaml:"workers"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
}

// Media controls the publish pipeline and the external transcoding tools.
type Media struct {
	TempDir           string  `yaml:"temp_dir"`
	PublicURL         string  `yaml:"public_url"`
	FFmpegPath        string  `yaml:"ffmpeg_path"`
	FFprobePath       string  `yaml:"ffprobe_path"`
	SegmentSeconds    int     `yaml:"segment_seconds"`
	Renditions        []int   `yaml:"renditions"`
	UploadConcurrency int     `yaml:"upload_concurrency"`
	MaxUploadBytes    int64   `yaml:"max_upload_bytes"`
	// PlaceholderDuration replaces the ffprobe result. Only honoured in the
	// develop environment.
	PlaceholderDuration float64 `yaml:"placeholder_duration"`
}

type Auth struct {
	AccessTokenSecret string `yaml:"access_token_secret"`
}

type Telemetry struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

type minioSettings struct {
	url       string
	accessID  string
	secretKey string
	secure    bool
}

func Load(path string) (*Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.postgresDSN)
	if err != nil {
		return nil, err
	}

	mongoDB, err := NewMongoDatabase(cfg.mongoURI, cfg.mongoDB)
	if err != nil {
		return nil, err
	}

	minioClient, err := minio.New(cfg.minio.url, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.minio.accessID, cfg.minio.secretKey, ""),
		Secure: cfg.minio.secure,
	})
	if err != nil {
		return nil, err
	}

	cfg.DB = db
	cfg.Mongo = mongoDB
	cfg.Storage = minioClient
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", constant.EnvironmentDevelop.String())
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.workers", 2)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("rabbitmq_port", 5672)
	v.SetDefault("rabbitmq_kind", "direct")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "crazzzytube")
	v.SetDefault("minio.bucket", "crazzzytube")
	v.SetDefault("media.temp_dir", "temp")
	v.SetDefault("media.ffmpeg_path", "ffmpeg")
	v.SetDefault("media.ffprobe_path", "ffprobe")
	v.SetDefault("media.segment_seconds", 6)
	v.SetDefault("media.renditions", []int{360, 720})
	v.SetDefault("media.upload_concurrency", 4)
	v.SetDefault("media.max_upload_bytes", int64(512<<20))
	v.SetDefault("telemetry.service_name", "crazzzytube")
}

// decode maps viper keys onto Config without opening any connection.
func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		MinIOBucket: v.GetString("minio.bucket"),
		App: App{
			Environment: v.GetString("app.environment"),
			Host:        v.GetString("app.host"),
			Protocol:    v.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort:        v.GetString("server.port"),
			Workers:         v.GetInt("server.workers"),
			CORSOrigins:     v.GetStringSlice("server.cors_origins"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Queue: &RabbitMQ{
			Host:         v.GetString("rabbitmq_host"),
			Port:         v.GetInt("rabbitmq_port"),
			User:         v.GetString("rabbitmq_user"),
			Pass:         v.GetString("rabbitmq_pass"),
			ExchangeName: v.GetString("rabbitmq_exchange"),
			Kind:         v.GetString("rabbitmq_kind"),
		},
		Media: Media{
			TempDir:             v.GetString("media.temp_dir"),
			PublicURL:           strings.TrimRight(v.GetString("media.public_url"), "/"),
			FFmpegPath:          v.GetString("media.ffmpeg_path"),
			FFprobePath:         v.GetString("media.ffprobe_path"),
			SegmentSeconds:      v.GetInt("media.segment_seconds"),
			Renditions:          v.GetIntSlice("media.renditions"),
			UploadConcurrency:   v.GetInt("media.upload_concurrency"),
			MaxUploadBytes:      v.GetInt64("media.max_upload_bytes"),
			PlaceholderDuration: v.GetFloat64("media.placeholder_duration"),
		},
		Auth: Auth{
			AccessTokenSecret: v.GetString("auth.access_token_secret"),
		},
		Telemetry: Telemetry{
			ServiceName:  v.GetString("telemetry.service_name"),
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
		},
		postgresDSN: v.GetString("postgresql_host"),
		mongoURI:    v.GetString("mongo.uri"),
		mongoDB:     v.GetString("mongo.database"),
		minio: minioSettings{
			url:       v.GetString("minio.url"),
			accessID:  v.GetString("minio.access_id"),
			secretKey: v.GetString("minio.secret_access_key"),
			secure:    v.GetBool("minio.secure"),
		},
	}

	if cfg.Queue.ExchangeName == "" {
		cfg.Queue.ExchangeName = constant.MediaExchange
	}
	if cfg.Media.PublicURL == "" && cfg.minio.url != "" {
		scheme := "http"
		if cfg.minio.secure {
			scheme = "https"
		}
		cfg.Media.PublicURL = fmt.Sprintf("%s://%s", scheme, cfg.minio.url)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Media.PlaceholderDuration < 0 {
		return errors.New("media.placeholder_duration must not be negative")
	}
	if c.Media.PlaceholderDuration > 0 && !c.App.IsDevelop() {
		return fmt.Errorf("media.placeholder_duration is only allowed in the %s environment", constant.EnvironmentDevelop)
	}
	if c.App.IsProduction() && c.Auth.AccessTokenSecret == "" {
		return errors.New("auth.access_token_secret is required in production")
	}
	if c.Media.UploadConcurrency < 1 {
		c.Media.UploadConcurrency = 1
	}
	if len(c.Media.Renditions) == 0 {
		return errors.New("media.renditions must list at least one height")
	}
	return nil
}
