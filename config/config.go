package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/TIANLI0/MatteKit/matting"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 MATTE_SERVER_PORT
const EnvPrefix = "MATTE"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Model   ModelConfig   `mapstructure:"model"`
	Matting MattingConfig `mapstructure:"matting"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	// MaxSide 处理前把最长边缩到该值以内
	MaxSide int `mapstructure:"max_side"`
}

type ModelConfig struct {
	ONNXPath      string `mapstructure:"onnx_path"`
	InputSize     int    `mapstructure:"input_size"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	QueueTimeout  int    `mapstructure:"queue_timeout"`
}

// MattingConfig 精修参数，Threshold / FeatherRadius 为 -1 表示自动
type MattingConfig struct {
	Threshold           int     `mapstructure:"threshold"`
	FeatherRadius       int     `mapstructure:"feather_radius"`
	GuidedRadius        int     `mapstructure:"guided_radius"`
	GuidedEps           float64 `mapstructure:"guided_eps"`
	TrimapBand          int     `mapstructure:"trimap_band"`
	AntiAliasMaxDist    int     `mapstructure:"anti_alias_max_dist"`
	DespillSampleRadius int     `mapstructure:"despill_sample_radius"`
	DespillStrength     float64 `mapstructure:"despill_strength"`
	DespillHueShift     float64 `mapstructure:"despill_hue_shift"`
	MorphologyRadius    int     `mapstructure:"morphology_radius"`
	UseTrimap           bool    `mapstructure:"use_trimap"`
	UseMorphology       bool    `mapstructure:"use_morphology"`
	UseDespill          bool    `mapstructure:"use_despill"`
	BlendOriginal       bool    `mapstructure:"blend_original"`
	BlendThreshold      float64 `mapstructure:"blend_threshold"`
	// Backing transparent 或 color
	Backing      string `mapstructure:"backing"`
	BackingColor string `mapstructure:"backing_color"`
}

type CacheConfig struct {
	// SweepSpec 内存缓存过期清理的 cron 表达式
	SweepSpec string `mapstructure:"sweep_spec"`
}

// Options 转换为流水线参数并校验
func (m MattingConfig) Options() (matting.Options, error) {
	opts := matting.Options{
		GuidedRadius:        m.GuidedRadius,
		GuidedEps:           m.GuidedEps,
		UseTrimap:           m.UseTrimap,
		TrimapBand:          m.TrimapBand,
		AntiAliasMaxDist:    m.AntiAliasMaxDist,
		UseMorphology:       m.UseMorphology,
		MorphologyRadius:    m.MorphologyRadius,
		UseDespill:          m.UseDespill,
		DespillSampleRadius: m.DespillSampleRadius,
		DespillStrength:     m.DespillStrength,
		DespillHueShift:     m.DespillHueShift,
		BlendOriginal:       m.BlendOriginal,
		BlendThreshold:      m.BlendThreshold,
	}
	if m.Threshold >= 0 {
		t := m.Threshold
		opts.Threshold = &t
	}
	if m.FeatherRadius >= 0 {
		r := m.FeatherRadius
		opts.FeatherRadius = &r
	}

	switch strings.ToLower(m.Backing) {
	case "", "transparent":
	case "color":
		backing, err := matting.ParseBackingColor(m.BackingColor)
		if err != nil {
			return matting.Options{}, err
		}
		opts.Backing = backing
	default:
		return matting.Options{}, fmt.Errorf("unknown backing mode %q", m.Backing)
	}

	if err := opts.Validate(); err != nil {
		return matting.Options{}, err
	}
	return opts, nil
}

// Validate 检查跨字段约束
func (c *Config) Validate() error {
	if !matting.ValidInputSize(c.Model.InputSize) {
		return fmt.Errorf("model.input_size must be %d or %d, got %d",
			matting.InputSizeSmall, matting.InputSizeDefault, c.Model.InputSize)
	}
	if c.Model.MaxConcurrent <= 0 {
		return fmt.Errorf("model.max_concurrent must be positive, got %d", c.Model.MaxConcurrent)
	}
	if c.Upload.MaxSide <= 0 {
		return fmt.Errorf("upload.max_side must be positive, got %d", c.Upload.MaxSide)
	}
	if _, err := c.Matting.Options(); err != nil {
		return fmt.Errorf("matting: %w", err)
	}
	return nil
}

// Load 从 YAML 文件加载配置，环境变量优先
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// 如果加载失败，返回默认配置
		return Default()
	}
	return cfg
}

// Default 仅由默认值与环境变量构成的配置
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: invalid built-in defaults: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/jpg", "image/webp"})
	v.SetDefault("upload.max_side", 1600)

	v.SetDefault("model.onnx_path", "./models/u2netp.onnx")
	v.SetDefault("model.input_size", matting.InputSizeDefault)
	v.SetDefault("model.max_concurrent", 3)
	v.SetDefault("model.queue_timeout", 30)

	d := matting.DefaultOptions()
	v.SetDefault("matting.threshold", -1)
	v.SetDefault("matting.feather_radius", -1)
	v.SetDefault("matting.guided_radius", d.GuidedRadius)
	v.SetDefault("matting.guided_eps", d.GuidedEps)
	v.SetDefault("matting.trimap_band", d.TrimapBand)
	v.SetDefault("matting.anti_alias_max_dist", d.AntiAliasMaxDist)
	v.SetDefault("matting.despill_sample_radius", d.DespillSampleRadius)
	v.SetDefault("matting.despill_strength", d.DespillStrength)
	v.SetDefault("matting.despill_hue_shift", d.DespillHueShift)
	v.SetDefault("matting.morphology_radius", d.MorphologyRadius)
	v.SetDefault("matting.use_trimap", d.UseTrimap)
	v.SetDefault("matting.use_morphology", d.UseMorphology)
	v.SetDefault("matting.use_despill", d.UseDespill)
	v.SetDefault("matting.blend_original", d.BlendOriginal)
	v.SetDefault("matting.blend_threshold", d.BlendThreshold)
	v.SetDefault("matting.backing", "transparent")
	v.SetDefault("matting.backing_color", "#ffffff")

	v.SetDefault("cache.sweep_spec", "@every 10m")
}
