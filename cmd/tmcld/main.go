package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/golang/glog"

	"github.com/sius/emotion/pkg/bridge"
	"github.com/sius/emotion/pkg/channel"
	"github.com/sius/emotion/pkg/channel/serial"
	"github.com/sius/emotion/pkg/channel/websocket"
	fx "github.com/sius/emotion/pkg/framework"
	"github.com/sius/emotion/pkg/tmcl"
)

func init() {
	SetupFlags()
}

func main() {
	flag.Parse()
	conf := Default()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			log.Fatalln(err)
		}
		// explicit flags override the file.
		flag.Parse()
	}
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}

	ch, err := serial.Open(&conf.Serial)
	if err != nil {
		log.Fatalln(err)
	}
	defer ch.Close()
	client := tmcl.NewClient(ch)
	client.Timeout = conf.Timeout

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("serial", watchChannel(ch)))
	if conf.MQTT.URL != "" {
		b, err := bridge.New(conf.MQTT.URL, conf.MQTT.ID, client, conf.Meta())
		if err != nil {
			log.Fatalln(err)
		}
		runner.Go(b)
	}
	if conf.Relay.Listen != "" {
		runner.Go(fx.NamedRun("relay", serveRelay(conf.Relay, client)))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

func watchChannel(ch *channel.Buffered) fx.Runnable {
	return fx.RunFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch.Done():
			_, err := ch.Available()
			return fmt.Errorf("serial: %w", err)
		}
	})
}

func serveRelay(conf RelayConfig, client *tmcl.Client) fx.Runnable {
	return fx.RunFunc(func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle(conf.Path, websocket.NewServer(client))
		srv := &http.Server{Addr: conf.Listen, Handler: mux}
		glog.Infof("relay listening on %s%s", conf.Listen, conf.Path)
		return fx.RunWithContextCancel(ctx, func() {
			srv.Shutdown(context.Background())
		}, srv.ListenAndServe)
	})
}
