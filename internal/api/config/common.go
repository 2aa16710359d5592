package config

// Config 配置主体
type Config struct {
	Server             ServerConfig       `mapstructure:"server"`
	DB                 DBConfig           `mapstructure:"database"`
	Redis              RedisConfig        `mapstructure:"redis"`
	Mongo              MongoConfig        `mapstructure:"mongo"`
	MinIO              MinIOConfig        `mapstructure:"minio"`
	Elastic            ElasticConfig      `mapstructure:"elastic"`
	Logstash           LogstashConfig     `mapstructure:"logstash"`
	LLM                LLMConfig          `mapstructure:"llm"`
	Analysis           AnalysisConfig     `mapstructure:"analysis"`
	LibPath            LibPathConfig      `mapstructure:"lib_path"`
	Transcode          TranscodeConfig    `mapstructure:"transcode"`
	Jobs               JobsConfig         `mapstructure:"jobs"`
	Kafka              KafkaConfig        `mapstructure:"kafka"`
	KafkaMediaConsumer KafkaMediaConsumer `mapstructure:"kafka_media_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig Mongo 配置，任务审计日志落在这里
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	ExternalUseSSL   bool   `mapstructure:"external_use_ssl"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	MediaIndex string `mapstructure:"media_index"`
}

// LogstashConfig 日志远程上报配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// LLMConfig 大模型配置，用于图片描述与描述翻译
type LLMConfig struct {
	URL         string `mapstructure:"url"`
	TextModel   string `mapstructure:"text_model"`
	VisionModel string `mapstructure:"vision_model"`
	ApiKey      string `mapstructure:"api_key"`
}

// AnalysisConfig 媒体分析服务配置
type AnalysisConfig struct {
	URL     string `mapstructure:"url"`
	ApiKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"`
}

// LibPathConfig 外部工具路径
type LibPathConfig struct {
	FFmpeg string `mapstructure:"ffmpeg"`
}

// TranscodeConfig 转码配置
type TranscodeConfig struct {
	AssetsDir string `mapstructure:"assets_dir"`
}

// JobsConfig 定时任务配置
type JobsConfig struct {
	Schedule           string `mapstructure:"schedule"`
	BatchSize          int    `mapstructure:"batch_size"`
	CaptionEnabled     bool   `mapstructure:"caption_enabled"`
	TranslationEnabled bool   `mapstructure:"translation_enabled"`
	TranslationSource  string `mapstructure:"translation_source"`
	TranslationTarget  string `mapstructure:"translation_target"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaMediaConsumer 媒体创建事件消费者配置，Topic 同时也是生产端写入的主题
type KafkaMediaConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
