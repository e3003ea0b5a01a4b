package main

import (
	"fmt"
	"os"
	"time"
)

// TestPipeline measures filter, map and reduce over c.N records, each step
// writing into its own collection.
func TestPipeline(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
	}
	WaitReady(c.Base)

	collection := CreateCollection(c.Base)
	AppendRecords(c, collection)

	steps := []struct {
		source  string
		action  string
		payload JSON
	}{
		{collection, "filter", JSON{"target": "low", "filter": JSON{"value": JSON{"$lt": 50}}}},
		{"low", "map", JSON{"target": "values", "pick": "value"}},
		{"values", "reduce", JSON{"target": "total", "op": "sum"}},
		{collection, "randomSubset", JSON{"target": "sample", "n": 1000}},
	}

	for _, step := range steps {
		t0 := time.Now()
		result, err := Post(c.Base+"/v1/collections/"+step.source+":"+step.action, step.payload)
		if err != nil {
			fmt.Println("ERROR:", step.action, err.Error())
			os.Exit(5)
		}
		fmt.Println(step.action, "took:", time.Since(t0), "result:", result)
	}
}
