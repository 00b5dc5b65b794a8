package database

import (
	"fmt"

	"questlog/config"

	"github.com/valkey-io/valkey-go"
)

type CacheClient = valkey.Client

// Valkey database index organization. Each index provides logical separation
// for a cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - resolved shares and other general caching
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) - user profiles, OIDC mappings, and per-owner
	// game collections
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) - pub/sub traffic for the event bus
	EVENTS_CACHE_INDEX
)

type Cache struct {
	General CacheClient
	User    CacheClient
	Events  CacheClient
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("failed to initialize cache database: address or port is empty")
	}

	initAddress := []string{fmt.Sprintf("%s:%d", address, port)}

	var cacheDB Cache
	var err error

	cacheDB.General, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: initAddress,
		SelectDB:    GENERAL_CACHE_INDEX,
	})
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.User, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: initAddress,
		SelectDB:    USER_CACHE_INDEX,
	})
	if err != nil {
		return log.Err("failed to create user valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: initAddress,
		SelectDB:    EVENTS_CACHE_INDEX,
	})
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	return nil
}
