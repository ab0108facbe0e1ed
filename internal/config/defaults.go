package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 5050
	DefaultDataDir     = "data"
	DefaultConcurrency = 4

	defaultFanjiaoTimeout = "10s"
	defaultPollInterval   = "5s"
	defaultMaxWait        = "300s"
	defaultTimeZone       = "Asia/Shanghai"
	defaultRatePerSecond  = 3
)

// Default 返回全部可选字段的默认值；必填的密钥与接口地址没有默认值。
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Fanjiao: FanjiaoConfig{
			TimeoutRaw: defaultFanjiaoTimeout,
		},
		Notion: NotionConfig{
			RatePerSecond: defaultRatePerSecond,
			TimeZone:      defaultTimeZone,
		},
		Assets: AssetsConfig{
			PollIntervalRaw: defaultPollInterval,
			MaxWaitRaw:      defaultMaxWait,
		},
		Sync: SyncConfig{
			Concurrency: DefaultConcurrency,
		},
		Logging: LoggingConfig{
			Mode:  "development",
			Level: "info",
		},
		DataDir: DefaultDataDir,
	}
}
