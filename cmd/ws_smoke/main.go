package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"hoops_backend/internal/logger"
	"hoops_backend/internal/service"

	"github.com/gorilla/websocket"
)

// ws_smoke drives a short head-to-head game against a running server while
// a spectator connection prints every state it receives.
func main() {
	port := flag.String("port", "", "server port (APP_PORT or 8080)")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	if *port == "" {
		*port = os.Getenv("APP_PORT")
	}
	if *port == "" {
		*port = "8080"
	}

	service.InitJWT(secret)
	judgeToken, err := service.GenerateJWT("smoke-judge")
	if err != nil {
		logger.Fatal("gen judge token", "error", err)
	}
	watchToken, err := service.GenerateJWT("smoke-watcher")
	if err != nil {
		logger.Fatal("gen watcher token", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", *port)

	var created struct {
		ID string `json:"id"`
	}
	call(base+"/games", judgeToken, map[string]any{
		"variant":  "head_to_head",
		"roster":   []string{"smoke-a", "smoke-b"},
		"settings": map[string]any{"target_score": 3},
	}, &created)
	call(base+"/games/"+created.ID+"/session", judgeToken, nil, nil)

	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws/games/%s?token=%s", *port, created.ID, watchToken)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatal("dial spectator", "error", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Printf("spectator got: %s\n", msg)

			var m struct {
				Type    string `json:"type"`
				Payload struct {
					Snapshot struct {
						Status string `json:"status"`
					} `json:"snapshot"`
				} `json:"payload"`
			}
			if json.Unmarshal(msg, &m) == nil && m.Payload.Snapshot.Status == "finished" {
				return
			}
		}
	}()

	events := []map[string]any{
		{"type": "score_points", "points": 2},
		{"type": "switch_possession"},
		{"type": "score_points", "points": 1},
	}
	for _, ev := range events {
		call(base+"/games/"+created.ID+"/events", judgeToken, ev, nil)
		time.Sleep(100 * time.Millisecond)
	}

	<-done
	fmt.Println("smoke test finished")
}

func call(url, token string, body any, out any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		logger.Fatal("build request", "url", url, "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("request failed", "url", url, "error", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		logger.Fatal("unexpected status", "url", url, "status", res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			logger.Fatal("decode response", "url", url, "error", err)
		}
	}
}
