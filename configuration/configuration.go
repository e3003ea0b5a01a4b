package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Dir               string `usage:"data directory"`
	Engine            string `usage:"storage engine: leveldb or memory"`
	CreateIfMissing   bool   `usage:"create data directory if it does not exist"`
	ApiKey            string `usage:"API key required in X-Api-Key, empty disables authentication"`
	ApiSecret         string `usage:"API secret required in X-Api-Secret"`
	EnableCompression bool   `usage:"gzip responses when the client accepts it"`
	LogLevel          string `usage:"log level: debug, info, warn or error"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          ":8080",
		Dir:               "data",
		Engine:            "leveldb",
		CreateIfMissing:   true,
		EnableCompression: true,
		LogLevel:          "info",
		ShowBanner:        true,
	}
}
