package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	Source     MSourceSetConfig  `yaml:"source"`
	Processing MProcessingConfig `yaml:"processing"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	MaxRetries       int `yaml:"retries"`
	ReconnectSeconds int `yaml:"reconnect_seconds"`
	WriteTimeout     int `yaml:"write_timeout"`
}

type MSourceSetConfig struct {
	SampleRate    float64         `yaml:"sample_rate"`
	BlockSize     int             `yaml:"block_size"`
	Channels      int             `yaml:"channels"`
	ChannelLabels []string        `yaml:"channel_labels"`
	Sources       []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // "simulator" or "gateway"
	URL  string `yaml:"url"`  // gateway only
	Seed int64  `yaml:"seed"` // simulator only
}

type MProcessingConfig struct {
	TimeAxis            string  `yaml:"time_axis"`
	FreqAxis            string  `yaml:"freq_axis"`
	FilterOrder         int     `yaml:"filter_order"`
	FilterLowHz         float64 `yaml:"filter_low_hz"`
	FilterHighHz        float64 `yaml:"filter_high_hz"`
	DecimateFactor      int     `yaml:"decimate_factor"`
	BufferSeconds       float64 `yaml:"buffer_seconds"`
	IntegrationTime     float64 `yaml:"integration_time"`
	FreqRangeLowHz      float64 `yaml:"freq_range_low_hz"`
	FreqRangeHighHz     float64 `yaml:"freq_range_high_hz"` // 0 means full axis
	MultipleComparisons bool    `yaml:"multiple_comparisons"`
	SignifThreshold     float64 `yaml:"significance_threshold"`
}
