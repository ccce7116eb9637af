package app

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bytepowered/goes"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/helper"
)

const DefaultConfigPath = "config.toml"

func init() {
	goes.SetPanicHandler(func(ctx context.Context, r interface{}) {
		logrus.Errorf("goroutine panic %v: %s", r, debug.Stack())
	})
}

func LoadConfig(confpath string) (*koanf.Koanf, error) {
	k := koanf.NewWithConf(koanf.Conf{
		Delim:       ".",
		StrictMerge: true,
	})
	if err := k.Load(file.Provider(confpath), toml.Parser()); err != nil {
		return nil, fmt.Errorf("load config: %s. %w", confpath, err)
	}
	return k, nil
}

// RunWith loads the config file named by args[0] (default config.toml) and
// serves until runCtx is done. With verifyOnly it stops after Init.
func RunWith(runCtx context.Context, args []string, verifyOnly bool) error {
	confpath := DefaultConfigPath
	if len(args) > 0 {
		confpath = args[0]
	}
	k, err := LoadConfig(confpath)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}
	runCtx = thin.ContextWithConfiger(runCtx, k)
	if err := setupLogger(runCtx); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	logrus.Infof("main: load: %s", confpath)
	inst := NewApp()
	if err := inst.Init(runCtx); err != nil {
		return fmt.Errorf("main: app init. %w", err)
	}
	if verifyOnly {
		return nil
	}
	return helper.ErrIf(inst.Serve(runCtx), "main: app serve, %w")
}

func setupLogger(ctx context.Context) error {
	config, err := loadLogConfig(ctx)
	if err != nil {
		return err
	}
	switch config.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:    false,
			DisableTimestamp: false,
			FullTimestamp:    true,
		})
	}
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(false)
	return nil
}
