// watch: live event observer.
// Subscribes to deskwatchd's websocket channel and prints each event
// as it is ingested. Purely a dashboard feed; missed events are always
// recoverable from the /events query endpoint.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deskwatch/deskwatch/internal/config"
	"github.com/deskwatch/deskwatch/internal/log"
	"github.com/deskwatch/deskwatch/pkg/activity"
)

var url = flag.String("url", "ws://127.0.0.1:5000/ws/events", "live channel URL")

func main() {
	flag.Parse()
	log.Init(config.LogLevel())

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Error("failed to connect", "err", err, "url", *url)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("watching live events", "url", *url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Info("connection closed", "err", err)
				return
			}
			printEvent(data)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
	case <-interrupt:
		// Polite close handshake, then give the server a moment.
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printEvent(data []byte) {
	var msg struct {
		Event string                     `json:"event"`
		Data  activity.TrackEventRequest `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("unreadable message", "err", err)
		return
	}

	line := fmt.Sprintf("%s  employee=%d  %s", msg.Data.EventTime, msg.Data.EmployeeID, msg.Data.EventType)
	if msg.Data.Duration > 0 {
		line += fmt.Sprintf("  %.1fs", msg.Data.Duration)
	}
	if msg.Data.Details != "" {
		line += "  " + msg.Data.Details
	}
	fmt.Println(line)
}
