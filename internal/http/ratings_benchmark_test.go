package httpserver

import (
	"fmt"
	"net/http"
	"testing"
)

func BenchmarkHandleStoreRatings(b *testing.B) {
	env := buildTestServer(b)

	store := createStore(b, env, "Benchmark Shop")
	for i := 0; i < 25; i++ {
		token, _ := registerUser(b, env, fmt.Sprintf("bench%d@example.com", i))
		rec := doJSON(b, env, http.MethodPost, "/ratings/", token, map[string]interface{}{
			"storeId":     store.ID,
			"score":       1 + i%5,
			"isAnonymous": i%3 == 0,
		})
		if rec.Code != http.StatusCreated {
			b.Fatalf("seed rating %d: status %d", i, rec.Code)
		}
	}

	path := fmt.Sprintf("/ratings/store/%d?limit=20", store.ID)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doJSON(b, env, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
