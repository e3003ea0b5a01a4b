package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fulldump/pipelinedb/bootstrap"
	"github.com/fulldump/pipelinedb/configuration"
)

type JSON = map[string]any

func Parallel(workers int, f func() error) error {
	g := &errgroup.Group{}
	for i := 0; i < workers; i++ {
		g.Go(f)
	}
	return g.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "pipelinedb_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// Post sends payload as JSON and returns the decoded response.
func Post(url string, payload any) (JSON, error) {

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		message, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: %s", resp.Status, message)
	}

	result := JSON{}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil && err != io.EOF {
		return nil, err
	}

	return result, nil
}

func CreateCollection(base string) string {

	name := "col-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	_, err := Post(base+"/v1/collections", JSON{"name": name})
	if err != nil {
		panic(err)
	}

	return name
}

func CreateServer(c *Config) (start func() error, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dir = dir
	conf.HttpAddr = "127.0.0.1:8080"
	conf.EnableCompression = false
	c.Base = "http://" + conf.HttpAddr

	start, stop, err := bootstrap.Bootstrap(&conf, zap.NewNop())
	if err != nil {
		panic(err)
	}

	return start, stop
}

// WaitReady blocks until the server at base answers.
func WaitReady(base string) {
	for i := 0; i < 100; i++ {
		resp, err := http.Get(base + "/release")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	panic("server at " + base + " is not ready")
}
