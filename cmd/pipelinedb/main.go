package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/fulldump/goconfig"
	"go.uber.org/zap"

	"github.com/fulldump/pipelinedb/bootstrap"
	"github.com/fulldump/pipelinedb/configuration"
)

var VERSION = "dev"

var banner = `
       _            _ _            ____  ____
 _ __ (_)_ __   ___| (_)_ __   ___|  _ \| __ )
| '_ \| | '_ \ / _ \ | | '_ \ / _ \ | | |  _ \
| |_) | | |_) |  __/ | | | | |  __/ |_| | |_) |
| .__/|_| .__/ \___|_|_|_| |_|\___|____/|____/
|_|     |_|              version ` + VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	logger, err := bootstrap.NewLogger(c.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	bootstrap.VERSION = VERSION
	start, _, err := bootstrap.Bootstrap(&c, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}

	err = start()
	if err != nil {
		logger.Error("stopped", zap.Error(err))
		os.Exit(1)
	}
}
