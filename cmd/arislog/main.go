// Command arislog is the reference host application wired against this
// module: discover sonars on the LAN, record a live session to disk,
// rebuild the TileDB index for a directory of recordings, watch a
// directory for new recordings, and serve Prometheus metrics for a live
// connection.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/alitto/pond"
	"github.com/maruel/interrupt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	fsnotify "gopkg.in/fsnotify.v1"

	aris "github.com/soundmetrics/aris-go"
	"github.com/soundmetrics/aris-go/assembler"
	"github.com/soundmetrics/aris-go/beacon"
	"github.com/soundmetrics/aris-go/connection"
	"github.com/soundmetrics/aris-go/recording"
	"github.com/soundmetrics/aris-go/search"
	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/soundmetrics/aris-go/recording/tiledbindex"
)

func discover(timeout time.Duration) error {
	l, err := beacon.New(beacon.Hooks{
		OnAdd: func(sn uint32, addr *net.UDPAddr) {
			log.Printf("discovered serial %d at %s", sn, addr)
		},
		OnUpdate: func(sn uint32, oldAddr, newAddr *net.UDPAddr) {
			log.Printf("serial %d moved from %s to %s", sn, oldAddr, newAddr)
		},
		OnExpired: func(sn uint32) {
			log.Printf("lost serial %d", sn)
		},
	})
	if err != nil {
		return err
	}
	defer l.Close()

	interrupt.HandleCtrlC()
	select {
	case <-interrupt.Channel:
	case <-time.After(timeout):
	}
	return nil
}

func record(sonarAddress, outPath string) error {
	w, err := recording.Create(outPath)
	if err != nil {
		return err
	}

	onFrame := func(f assembler.Frame) {
		if !f.Complete {
			return
		}
		h, err := aris.DecodeFrameHeader(f.Header)
		if err != nil {
			log.Printf("dropping frame %d: %v", f.FrameIndex, err)
			return
		}
		if err := aris.Reorder(h, f.Data); err != nil {
			log.Printf("dropping frame %d: reorder failed: %v", f.FrameIndex, err)
			return
		}
		h.ReorderedSamples = 1
		if err := w.WriteFrame(h, f.Data); err != nil {
			log.Printf("write failed for frame %d: %v", f.FrameIndex, err)
		}
	}

	c, err := connection.Dial(sonarAddress, onFrame)
	if err != nil {
		w.Close()
		return err
	}

	interrupt.HandleCtrlC()
	<-interrupt.Channel

	connErr := c.Close()
	writeErr := w.Close()
	if connErr != nil {
		return connErr
	}
	return writeErr
}

func reindexOne(ctx *tiledb.Context, path string) error {
	headers, err := recording.ReadFrameHeaders(path)
	if err != nil {
		return err
	}

	records := make([]tiledbindex.FrameRecord, len(headers))
	for i, h := range headers {
		records[i] = tiledbindex.FromFrameHeader(h)
	}

	arrayURI := path + ".tiledb"
	return tiledbindex.WriteIndex(ctx, arrayURI, records)
}

func reindexAll(uri, configURI string) error {
	paths, err := search.FindRecordings(uri, configURI)
	if err != nil {
		return err
	}
	log.Printf("found %d recordings under %s", len(paths), uri)

	var config *tiledb.Config
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return err
	}
	defer config.Free()

	tctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer tctx.Free()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU()
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(runCtx))
	defer pool.StopAndWait()

	for _, p := range paths {
		path := p
		pool.Submit(func() {
			if err := reindexOne(tctx, path); err != nil {
				log.Printf("reindex failed for %s: %v", path, err)
			}
		})
	}

	return nil
}

func watch(dir, configURI string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	interrupt.HandleCtrlC()
	for {
		select {
		case <-interrupt.Channel:
			return nil
		case err := <-watcher.Errors:
			return err
		case ev := <-watcher.Events:
			if ev.Op&fsnotify.Create == 0 || filepath.Ext(ev.Name) != ".aris" {
				continue
			}
			log.Printf("new recording: %s", ev.Name)
			if err := reindexAll(dir, configURI); err != nil {
				log.Printf("reindex after watch event failed: %v", err)
			}
		}
	}
}

func serveMetrics(addr string, metrics *assembler.Metrics) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, nil)
}

func main() {
	app := &cli.App{
		Name:  "arislog",
		Usage: "discover, record, and index ARIS sonar sessions",
		Commands: []*cli.Command{
			{
				Name:  "discover",
				Usage: "listen for beacon availability broadcasts",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second},
				},
				Action: func(c *cli.Context) error {
					return discover(c.Duration("timeout"))
				},
			},
			{
				Name:  "record",
				Usage: "connect to a sonar and record frames to a .aris file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sonar-address", Required: true},
					&cli.StringFlag{Name: "out", Required: true, Usage: "output .aris path"},
				},
				Action: func(c *cli.Context) error {
					return record(c.String("sonar-address"), c.String("out"))
				},
			},
			{
				Name:  "reindex",
				Usage: "rebuild TileDB frame-header indexes for recordings under a URI",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Required: true},
					&cli.StringFlag{Name: "config-uri"},
				},
				Action: func(c *cli.Context) error {
					return reindexAll(c.String("uri"), c.String("config-uri"))
				},
			},
			{
				Name:  "watch",
				Usage: "watch a directory and reindex when new recordings appear",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Required: true},
					&cli.StringFlag{Name: "config-uri"},
				},
				Action: func(c *cli.Context) error {
					return watch(c.String("dir"), c.String("config-uri"))
				},
			},
			{
				Name:  "serve-metrics",
				Usage: "serve Prometheus metrics for a live recording connection",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sonar-address", Required: true},
					&cli.StringFlag{Name: "listen-addr", Value: ":9090"},
				},
				Action: func(c *cli.Context) error {
					conn, err := connection.Dial(c.String("sonar-address"), func(assembler.Frame) {})
					if err != nil {
						return err
					}
					defer conn.Close()
					return serveMetrics(c.String("listen-addr"), conn.Metrics())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
