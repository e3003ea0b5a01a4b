package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

// AppendRecords streams c.N records into collection using c.Workers
// concurrent requests.
func AppendRecords(c Config, collection string) {

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
	}

	items := c.N

	go func() {
		for {
			fmt.Println("items:", atomic.LoadInt64(&items))
			time.Sleep(1 * time.Second)
		}
	}()

	err := Parallel(c.Workers, func() error {

		r, w := io.Pipe()

		wb := bufio.NewWriterSize(w, 1*1024*1024)

		go func() {
			for {
				n := atomic.AddInt64(&items, -1)
				if n < 0 {
					break
				}
				fmt.Fprintf(wb, "{\"id\":%d,\"value\":%d}\n", n, n%100)
			}
			wb.Flush()
			w.Close()
		}()

		resp, err := client.Post(c.Base+"/v1/collections/"+collection+":append", "application/x-ndjson", r)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		return nil
	})
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(4)
	}
}

func TestAppend(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
	}
	WaitReady(c.Base)

	collection := CreateCollection(c.Base)

	t0 := time.Now()
	AppendRecords(c, collection)
	took := time.Since(t0)

	fmt.Println("sent:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f records/sec\n", float64(c.N)/took.Seconds())
}
