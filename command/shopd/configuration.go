// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/configuration"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/dispatch"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultCacheFile = "shopd.cache"

	defaultLogDirectory = "log"
	defaultLogFile      = "shopd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultListen             = "0.0.0.0:9000"
	defaultTCPListen          = "0.0.0.0:9000"
	defaultMaximumConnections = 100

	defaultOfferWindow    = 60  // seconds
	defaultPurchaseWindow = 300 // seconds
	defaultSaveInterval   = 10  // seconds
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "info",
}

// TimeoutsType - all windows in whole seconds
type TimeoutsType struct {
	OfferWindow    int `gluamapper:"offer_window" json:"offer_window"`
	PurchaseWindow int `gluamapper:"purchase_window" json:"purchase_window"`
	SaveInterval   int `gluamapper:"save_interval" json:"save_interval"`
}

// Configuration - the full server configuration
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`
	CacheFile     string `gluamapper:"cache_file" json:"cache_file"`

	Server   dispatch.Configuration `gluamapper:"server" json:"server"`
	Timeouts TimeoutsType           `gluamapper:"timeouts" json:"timeouts"`
	Logging  logger.Configuration   `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		CacheFile:     defaultCacheFile,

		Server: dispatch.Configuration{
			Listen:             defaultListen,
			TCPListen:          defaultTCPListen,
			MaximumConnections: defaultMaximumConnections,
		},

		Timeouts: TimeoutsType{
			OfferWindow:    defaultOfferWindow,
			PurchaseWindow: defaultPurchaseWindow,
			SaveInterval:   defaultSaveInterval,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.CacheFile,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// create the log directory if it does not already exist
	if err := os.MkdirAll(options.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	// done
	return options, nil
}
