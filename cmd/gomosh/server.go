package main

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/ugparu/gomosh/utils/logger"
)

// Server exposes the pprof handlers while a run is in progress.
type Server struct {
	server    *http.Server
	startOnce *sync.Once
	closeOnce *sync.Once
	deadChan  chan any
}

func newServer(addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	pprof.Register(router)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	s := &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		deadChan:  make(chan any),
		startOnce: &sync.Once{},
		closeOnce: &sync.Once{},
	}
	logger.Debug(s, "Initialized and set up")
	return s
}

func (s *Server) String() string {
	return "pprof"
}

func (s *Server) Start() {
	err := errors.New("HTTP server has been started already")
	s.startOnce.Do(func() {
		defer close(s.deadChan)

		logger.Infof(s, "Listening on %s", s.server.Addr)
		if err = s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warning(s, err.Error())
		}
		err = nil
	})
	if err != nil {
		logger.Error(s, err.Error())
	}
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		logger.Debug(s, "Stopping and closing")
		_ = s.server.Close()
	})
}

func (s *Server) Dead() <-chan any {
	return s.deadChan
}
