// Minimal end-to-end check against a running spycat API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:8000")
	redisURL = os.Getenv("REDIS_URL")
	token    = os.Getenv("API_TOKEN")
)

type target struct {
	ID         uint64 `json:"id"`
	IsComplete bool   `json:"is_complete"`
}

type mission struct {
	ID         uint64   `json:"id"`
	CatID      *uint64  `json:"cat_id"`
	IsComplete bool     `json:"is_complete"`
	Targets    []target `json:"targets"`
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	started := time.Now()

	catID := createCat()
	m := createMission(catID)

	completeTarget(m.Targets[0].ID)
	if getMission(m.ID).IsComplete {
		log.Fatal("mission: completed before its last target")
	}
	completeTarget(m.Targets[1].ID)
	if !getMission(m.ID).IsComplete {
		log.Fatal("mission: not completed after its last target")
	}

	doReq("PATCH", fmt.Sprintf("/targets/%d", m.Targets[0].ID), map[string]any{"notes": "late"}, nil, http.StatusBadRequest)

	if redisURL != "" {
		checkStream(started, m.ID)
	}

	doReq("DELETE", fmt.Sprintf("/cats/%d", catID), nil, nil, http.StatusNoContent)
	doReq("DELETE", fmt.Sprintf("/missions/%d", m.ID), nil, nil, http.StatusNoContent)

	fmt.Println("✓ all endpoints passed")
}

func createCat() uint64 {
	var resp struct{ ID uint64 }
	doReq("POST", "/cats/", map[string]any{
		"name":                "smoke-" + uuid.NewString()[:8],
		"years_of_experience": 2,
		"breed":               getenv("SMOKE_BREED", "Bengal"),
		"salary":              1000,
	}, &resp, http.StatusCreated)
	return resp.ID
}

func createMission(catID uint64) mission {
	var m mission
	doReq("POST", "/missions/", map[string]any{
		"cat_id": catID,
		"targets": []map[string]any{
			{"name": "A", "country": "X"},
			{"name": "B", "country": "Y"},
		},
	}, &m, http.StatusCreated)
	if len(m.Targets) != 2 {
		log.Fatalf("mission: want 2 targets, got %d", len(m.Targets))
	}
	return m
}

func completeTarget(id uint64) {
	doReq("PATCH", fmt.Sprintf("/targets/%d", id), map[string]any{"is_complete": true}, nil, http.StatusOK)
}

func getMission(id uint64) mission {
	var m mission
	doReq("GET", fmt.Sprintf("/missions/%d", id), nil, &m, http.StatusOK)
	return m
}

func checkStream(since time.Time, missionID uint64) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	start := fmt.Sprintf("%d-0", since.UnixMilli())
	entries, err := rdb.XRange(context.Background(), "spycat.missions", start, "+").Result()
	if err != nil {
		log.Fatalf("redis xrange: %v", err)
	}
	want := fmt.Sprint(missionID)
	for _, e := range entries {
		if e.Values["type"] == "mission.completed" && e.Values["mission_id"] == want {
			return
		}
	}
	log.Fatal("events: mission.completed not published")
}

func doReq(method, path string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
