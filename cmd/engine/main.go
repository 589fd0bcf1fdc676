// Command engine runs the engine headless for a number of frames and
// prints runtime statistics. Configuration comes from flags and
// environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fulldump/goconfig"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/kolkov/enginecore/core"
	"github.com/kolkov/enginecore/internal/config"
	"github.com/kolkov/enginecore/internal/diag"
	"github.com/kolkov/enginecore/internal/engine"
	"github.com/kolkov/enginecore/internal/logging"
	"github.com/kolkov/enginecore/internal/platform/window"
)

func main() {
	c := config.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", core.Version)
		return
	}

	if c.ShowConfig {
		json.MarshalWrite(os.Stdout, c, jsontext.WithIndent("    "))
		fmt.Println()
	}

	if err := run(c); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func run(c config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	opts, err := c.LogOptions()
	if err != nil {
		return err
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	e, err := engine.New(c, window.NewHeadless(), log, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.HttpAddr != "" {
		s := &http.Server{
			Addr:    c.HttpAddr,
			Handler: diag.Build(e, log),
		}
		go func() {
			log.Info("diagnostics listening", slog.String("addr", c.HttpAddr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("diagnostics server", slog.Any("err", err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.Shutdown(sctx)
		}()
	}

	runErr := e.Run(ctx, c.Frames)
	st := e.Stats()
	leaks := e.Close(os.Stderr)

	log.Info("engine stopped",
		slog.Uint64("frames", st.Frames),
		slog.Duration("avg_frame", st.AvgFrame),
		slog.Uint64("objects_created", st.Runtime.Created),
		slog.Int("leaks", leaks))
	fmt.Printf("frames: %d avg: %s objects: %d leaks: %d\n",
		st.Frames, st.AvgFrame, st.Runtime.Created, leaks)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
