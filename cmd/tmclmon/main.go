package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/sius/emotion/pkg/bridge/mqtt"
	"github.com/sius/emotion/pkg/bridge/msgs"
	"github.com/sius/emotion/pkg/tmcl"
)

var (
	mqttURL = "mqtt://localhost:1883/tmcl/"
	filter  = "+/#"
)

func init() {
	if val := os.Getenv("TMCL_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter relative to the URL prefix.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(filter, mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		msg, err := msgs.Decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		switch m := msg.(type) {
		case *msgs.Request:
			cmd, err := m.Command()
			if err != nil {
				log.Printf("%s: [%d] %v", topic, m.Seq, err)
				return
			}
			log.Printf("%s: [%d] %s", topic, m.Seq, cmd)
		case *msgs.Reply:
			if m.Result != int32(tmcl.ResultOK) {
				log.Printf("%s: [%d] %s: %s", topic, m.Seq, tmcl.Result(m.Result), m.Error)
				return
			}
			log.Printf("%s: [%d] %s", topic, m.Seq, m.Reply())
		}
	}))
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
