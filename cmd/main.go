package main

import (
	"flag"
	"log"
	"os"

	"github.com/9triver/multilang/internal/config"
	"github.com/9triver/multilang/internal/examples/wordcount"
	wcrepo "github.com/9triver/multilang/internal/infra/repository/wordcount"
	"github.com/9triver/multilang/internal/multilang/bolt"
	"github.com/9triver/multilang/internal/multilang/component"
	"github.com/9triver/multilang/internal/multilang/spout"
	"github.com/9triver/multilang/internal/multilang/transport"
	statushttp "github.com/9triver/multilang/internal/transport/http"
	"github.com/9triver/multilang/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// runner bolt.Runner 与 spout.Runner 的公共部分
type runner interface {
	Run() error
}

func main() {
	configFile := flag.String("config", "multilang.yaml", "Path to config file")
	componentName := flag.String("component", "", "Component to run: sentence-spout, split-bolt or count-bolt")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if *componentName != "" {
		cfg.Component = *componentName
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	util.InitLogger(cfg.Logging.Level)
	os.Exit(run(cfg))
}

// run 返回进程退出码，保证 defer 的清理在退出前执行
func run(cfg *config.Config) int {
	if rf, err := util.InitLoggerWithFile(cfg.Logging.Dir, cfg.Logging.FilePrefix, cfg.Logging.RetentionDays); err != nil {
		logrus.Warnf("File logging disabled: %v", err)
	} else {
		defer rf.Close()
	}

	runID := util.NewRunID()
	logger := logrus.WithFields(logrus.Fields{"component": cfg.Component, "run": runID})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := component.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.WithError(err).Warn("Failed to register protocol metrics")
	}

	c := component.New(transport.NewStdio(),
		component.WithQueueWatermark(cfg.Protocol.Watermark()),
		component.WithMetrics(metrics),
	)

	// 握手完成前 hook 不会转发，pid 回复始终是第一帧
	if cfg.Logging.Forward {
		level, err := logrus.ParseLevel(cfg.Logging.ForwardLevel)
		if err != nil {
			logger.Warnf("Invalid forward level %q, using warn", cfg.Logging.ForwardLevel)
			level = logrus.WarnLevel
		}
		logrus.AddHook(component.NewLogHook(c, level))
	}

	r, words, err := newRunner(cfg, c)
	if err != nil {
		logger.Errorf("Failed to create component: %v", err)
		return 1
	}

	if cfg.Status.Enabled {
		status := statushttp.NewServer(statushttp.Options{
			Port:      cfg.Status.Port,
			Component: cfg.Component,
			RunID:     runID,
			Gatherer:  registry,
			Words:     words,
		})
		if err := status.Start(); err != nil {
			logger.Warnf("Status server disabled: %v", err)
		} else {
			defer status.Stop()
		}
	}

	logger.Info("Multilang worker starting")
	if err := r.Run(); err != nil {
		logger.WithError(err).Error("Multilang worker stopped with error")
		return 1
	}
	logger.Info("Shutdown complete")
	return 0
}

// newRunner 按配置创建组件；count bolt 额外返回计数仓库供状态接口查询
func newRunner(cfg *config.Config, c *component.Component) (runner, statushttp.TopWordsSource, error) {
	boltOpts := bolt.Options{
		AutoAck:      cfg.Protocol.IsAutoAck(),
		AutoFail:     cfg.Protocol.IsAutoFail(),
		ReportErrors: cfg.Protocol.IsReportErrors(),
	}

	switch cfg.Component {
	case config.ComponentSentenceSpout:
		return spout.NewRunner(c, wordcount.NewSentenceSpout(int64(os.Getpid())), spout.Options{
			AutoID:       true,
			ReportErrors: cfg.Protocol.IsReportErrors(),
		}), nil, nil
	case config.ComponentSplitBolt:
		return bolt.NewRunner(c, &wordcount.SplitBolt{}, boltOpts), nil, nil
	case config.ComponentCountBolt:
		repo, err := wcrepo.NewRepoSQLite(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return bolt.NewRunner(c, wordcount.NewCountBolt(repo), boltOpts), repo, nil
	default:
		return nil, nil, cfg.Validate()
	}
}
