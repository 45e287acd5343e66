package geoip

import (
	"net"

	"github.com/oschwald/maxminddb-golang"
	log "github.com/sirupsen/logrus"
)

// Resolver maps viewer addresses to ISO country codes. A Resolver without a
// database resolves every address to "".
type Resolver struct {
	db *maxminddb.Reader
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads a MaxMind country or city database. A missing or unreadable
// database disables lookups instead of failing startup.
func Open(dbPath string) *Resolver {
	if dbPath == "" {
		return &Resolver{}
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		log.WithError(err).WithField("path", dbPath).Warn("geoip: failed to open database, country lookup disabled")
		return &Resolver{}
	}
	log.WithField("path", dbPath).Info("geoip: loaded database")
	return &Resolver{db: db}
}

func (r *Resolver) Enabled() bool {
	return r.db != nil
}

func (r *Resolver) Country(ipStr string) string {
	if r.db == nil || ipStr == "" {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	var record countryRecord
	if err := r.db.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

func (r *Resolver) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
