package ld

import "github.com/sirupsen/logrus"

// log is the package-wide logger used for document loader cache decisions
// and RDF conversion warnings (e.g. triples dropped under non-generalized
// RDF mode). It defaults to logrus' standard logger at Info level so a
// host application gets useful output without any setup, and can be
// replaced wholesale with SetLogger to route into the host's own logging
// pipeline.
var log = logrus.StandardLogger()

// SetLogger overrides the logger used throughout this package. Pass a
// *logrus.Logger configured with the host application's formatter, level,
// and output destination.
func SetLogger(logger *logrus.Logger) {
	log = logger
}
