package service

import (
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create collection", func(a *biff.A) {
		resp := apiRequest("POST", "/collections").
			WithBodyJson(JSON{
				"name": "people",
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"name":       "people",
			"total":      0,
			"last_index": 0,
		})

		a.Alternative("Retrieve collection", func(a *biff.A) {
			resp := apiRequest("GET", "/collections/people").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":       "people",
				"total":      0,
				"last_index": 0,
			})
		})

		a.Alternative("List collections", func(a *biff.A) {
			apiRequest("POST", "/collections").WithBodyJson(JSON{"name": "animals"}).Do()

			resp := apiRequest("GET", "/collections").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{
				{"name": "animals", "total": 0, "last_index": 0},
				{"name": "people", "total": 0, "last_index": 0},
			})
		})

		a.Alternative("Create existing collection", func(a *biff.A) {
			resp := apiRequest("POST", "/collections").
				WithBodyJson(JSON{
					"name": "people",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)

			a.Alternative("Unless errorIfExists is false", func(a *biff.A) {
				resp := apiRequest("POST", "/collections").
					WithBodyJson(JSON{
						"name":          "people",
						"errorIfExists": false,
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			})
		})

		a.Alternative("Drop collection", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/people:drop").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped collection", func(a *biff.A) {
				resp := apiRequest("GET", "/collections/people").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Append nothing", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/people:append").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusNoContent)
		})

		a.Alternative("Append malformed", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/people:append").
				WithBodyString(`{"name":"alice"}` + "\n" + `{"name":`).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)

			a.Alternative("Previous records are kept", func(a *biff.A) {
				resp := apiRequest("GET", "/collections/people").Do()
				biff.AssertEqual(resp.BodyJsonMap()["total"], 1.0)
			})
		})

		a.Alternative("Reduce empty collection", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/people:reduce").
				WithBodyJson(JSON{
					"op":     "max",
					"path":   "age",
					"target": "oldest",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)

			a.Alternative("Count is zero", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:reduce").
					WithBodyJson(JSON{
						"op":     "count",
						"target": "count",
					}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/count:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{0})
			})
		})

		a.Alternative("Append records", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/people:append").
				WithBodyString(`{"name":"alice","age":30}` + "\n" +
					`{"name":"bob","age":20}` + "\n" +
					`{"name":"carol","age":40}` + "\n").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":       "people",
				"total":      3,
				"last_index": 3,
			})

			alice := JSON{"name": "alice", "age": 30}
			bob := JSON{"name": "bob", "age": 20}
			carol := JSON{"name": "carol", "age": 40}

			a.Alternative("List", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:list").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), []JSON{alice, bob, carol})
			})

			a.Alternative("List range", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:list").
					WithBodyJson(JSON{"from": 1, "to": 2}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), []JSON{bob})
			})

			a.Alternative("Get", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:get").
					WithBodyJson(JSON{"index": 2}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), carol)
			})

			a.Alternative("Get out of range", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:get").
					WithBodyJson(JSON{"index": 3}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Set", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:set").
					WithBodyJson(JSON{"index": 1, "value": "nobody"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/people:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{alice, "nobody", carol})
			})

			a.Alternative("Delete one", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:delete").
					WithBodyJson(JSON{"index": 0}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "people",
					"total":      2,
					"last_index": 3,
				})
			})

			a.Alternative("Delete all", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:delete").
					WithBodyJson(JSON{"all": true}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "people",
					"total":      0,
					"last_index": 0,
				})
			})

			a.Alternative("Delete without arguments", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:delete").
					WithBodyJson(JSON{}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Copy", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:copy").
					WithBodyJson(JSON{"target": "backup", "from": 1}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "backup",
					"total":      2,
					"last_index": 2,
				})
			})

			a.Alternative("Copy into itself", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:copy").
					WithBodyJson(JSON{"target": "people"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Map pick", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:map").
					WithBodyJson(JSON{"target": "names", "pick": "name"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/names:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{"alice", "bob", "carol"})
			})

			a.Alternative("Map set in place", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:map").
					WithBodyJson(JSON{"set": JSON{"active": true}}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/people:get").
					WithBodyJson(JSON{"index": 0}).Do()
				biff.AssertEqualJson(resp.BodyJson(), JSON{"name": "alice", "age": 30, "active": true})
			})

			a.Alternative("Filter", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:filter").
					WithBodyJson(JSON{"filter": JSON{"age": JSON{"$gt": 25}}}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "people",
					"total":      2,
					"last_index": 3,
				})

				resp = apiRequest("POST", "/collections/people:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []JSON{alice, carol})
			})

			a.Alternative("Reduce sum", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:reduce").
					WithBodyJson(JSON{"op": "sum", "path": "age", "target": "total"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/total:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{90})
			})

			a.Alternative("Reduce max", func(a *biff.A) {
				apiRequest("POST", "/collections/people:reduce").
					WithBodyJson(JSON{"op": "max", "path": "age", "target": "oldest"}).Do()

				resp := apiRequest("POST", "/collections/oldest:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{40})
			})

			a.Alternative("Reduce count appends", func(a *biff.A) {
				for i := 0; i < 2; i++ {
					resp := apiRequest("POST", "/collections/people:reduce").
						WithBodyJson(JSON{"op": "count", "target": "count"}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
				}

				resp := apiRequest("POST", "/collections/count:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{3, 3})
			})

			a.Alternative("Reduce collect", func(a *biff.A) {
				apiRequest("POST", "/collections/people:reduce").
					WithBodyJson(JSON{"op": "collect", "path": "name", "target": "all"}).Do()

				resp := apiRequest("POST", "/collections/all:list").Do()
				biff.AssertEqualJson(resp.BodyJson(), []interface{}{
					[]interface{}{"alice", "bob", "carol"},
				})
			})

			a.Alternative("Reduce unknown op", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:reduce").
					WithBodyJson(JSON{"op": "avg"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Random subset in place", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:randomSubset").
					WithBodyJson(JSON{"n": 2}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJsonMap()["total"], 2.0)
			})

			a.Alternative("Random subset into another collection", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:randomSubset").
					WithBodyJson(JSON{"n": 2, "target": "sample"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJsonMap()["name"], "sample")
				biff.AssertEqual(resp.BodyJsonMap()["total"], 2.0)

				resp = apiRequest("GET", "/collections/people").Do()
				biff.AssertEqual(resp.BodyJsonMap()["total"], 3.0)
			})

			a.Alternative("Refresh", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/people:refresh").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "people",
					"total":      3,
					"last_index": 3,
				})
			})
		})
	})

	a.Alternative("Invalid collection name", func(a *biff.A) {
		resp := apiRequest("POST", "/collections").
			WithBodyJson(JSON{
				"name": "a!!b",
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Missing collection", func(a *biff.A) {
		resp := apiRequest("GET", "/collections/missing").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)

		a.Alternative("Append is not allowed", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/missing:append").
				WithBodyString(`1`).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})
	})
}
