package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"event-portal/internal/config"
	"event-portal/internal/logging"
	"event-portal/internal/remote"
	"event-portal/internal/store"
	"event-portal/internal/token"
	httptransport "event-portal/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	mintToken := flag.String("mint-token", "", "mint an event token and exit, format scope:event_id (e.g. register:42)")
	flag.Parse()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	tokens := token.NewAuthorizer(cfg.EventTokenSecret)
	if *mintToken != "" {
		if err := mintAndPrint(tokens, *mintToken, cfg.EventTokenTTL); err != nil {
			log.Fatal().Err(err).Msg("mint token failed")
		}
		return
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	caller := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteAPIKey, cfg.RemoteSiteKey, cfg.RemoteCallTimeout)
	r := httptransport.NewRouter(cfg, st, st, caller, tokens, st.Ping)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func mintAndPrint(tokens *token.Authorizer, spec string, ttl time.Duration) error {
	scopeRaw, idRaw, ok := strings.Cut(spec, ":")
	if !ok {
		return fmt.Errorf("expected scope:event_id, got %q", spec)
	}
	scope := token.Scope(scopeRaw)
	switch scope {
	case token.ScopeRegister, token.ScopeUpdate, token.ScopeCancel, token.ScopeCheckin:
	default:
		return fmt.Errorf("unknown scope %q", scopeRaw)
	}
	eventID, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil || eventID < 1 {
		return fmt.Errorf("invalid event id %q", idRaw)
	}
	minted, err := tokens.Issue(scope, eventID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, minted)
	return nil
}
