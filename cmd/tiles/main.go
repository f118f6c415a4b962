// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Tiles lays out components on the terminal.  It takes over the terminal
and serves a websocket gateway components connect to; connected
components request a layout and get allocated a screen region they
render into.

Usage:

	tiles [--listen 127.0.0.1:7878] [--log tiles.log]

A component connects to ws://<listen>/?id=<component-id> and sends
layout requests like

	{"type":"message","tag":"!layout-add","seq":1,"content":{
	    "type":"add","at":[],"split":"left",
	    "constraint_1":{"base":{"type":"percentage","value":30}},
	    "constraint_2":{"base":{"type":"max","value":100}},
	    "component":"A","border":{"type":"rounded","colour":"blue"}}}

Each time the layout changes tiles draws the borders of the layout,
reports every component's allocated rectangle under the label
!layout-allocated-rect and waits until each component confirmed its
rendering by setting !layout-render-confirm.  Then the next request is
processed, i.e. requests are processed strictly one after another:

	+-------------------------------------------------+
	|╭──────────╮                                     |
	|│    A     │                  B                  |
	|╰──────────╯                                     |
	+-------------------------------------------------+

Since tiles owns the terminal, log output is discarded unless a log
file is given.  ctrl-c or ctrl-d quit tiles.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slukits/tiles/cmd/tiles/controller"
	"github.com/slukits/tiles/pkg/canvas"
	"github.com/slukits/tiles/pkg/gateway"
	"github.com/spf13/cobra"
)

const defaultListen = "127.0.0.1:7878"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tiles: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var listen, logFile string
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Lay out websocket connected components on the terminal",
		Long: `Tiles takes over the terminal and splits it into regions for the
components which connect to its websocket gateway.  Components request
layout changes and render into the regions they get allocated.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := setupLogging(logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", defaultListen,
		"address the component gateway listens on")
	cmd.Flags().StringVar(&logFile, "log", "",
		"file log output is appended to; discarded if not given")
	return cmd
}

// setupLogging points the standard logger to given file or discards
// its output if no file is given.
func setupLogging(path string) (closeLog func(), err error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.Printf("=== tiles starting (PID: %d) ===", os.Getpid())
	return func() {
		log.SetOutput(io.Discard)
		f.Close()
	}, nil
}

// run serves the gateway on given address and runs the layout
// controller on the terminal until the terminal is closed or given
// context is done.
func run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	c, err := canvas.New()
	if err != nil {
		ln.Close()
		return err
	}
	defer c.Close()

	gw := gateway.New(c, nil)
	srv := &http.Server{Handler: gw, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("tiles: gateway: %v", err)
			c.Close()
		}
	}()
	defer func() {
		gw.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("tiles: gateway shutdown: %v", err)
		}
	}()
	log.Printf("tiles: gateway listening on %s", ln.Addr())

	return controller.New(c, nil).Run(ctx)
}
