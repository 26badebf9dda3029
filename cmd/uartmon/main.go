package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/robotalks/softuart/pkg/bridge/mqtt"
	"github.com/robotalks/softuart/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/softuart/"
)

func init() {
	if val := os.Getenv("SOFTUART_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}

	q.Sub("+/"+mqtt.TopicStats, mqtt.Handler(func(topic string, payload []byte) {
		report, err := msgs.DecodeStatsReport(payload)
		if err != nil {
			log.Printf("%s: bad report: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, report.String())
	}))
	line := mqtt.Handler(func(topic string, payload []byte) {
		dir := "<-"
		if strings.HasSuffix(topic, "/"+mqtt.TopicTx) {
			dir = "->"
		}
		log.Printf("%s %s %s", topic[:strings.LastIndex(topic, "/")], dir, strconv.Quote(string(payload)))
	})
	q.Sub("+/"+mqtt.TopicRx, line)
	q.Sub("+/"+mqtt.TopicTx, line)
	<-(chan struct{})(nil)
}
