// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/dispatch"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/market"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/purchase"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/snapshot"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 || (len(arguments) > 0 && "help" == arguments[0]) {
		printHelp(program)
		return
	}

	if len(arguments) > 0 && "version" == arguments[0] {
		fmt.Printf("%s version: %s\n", program, version)
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// configuration enquiry, no server start
	if len(arguments) > 0 && "config" == arguments[0] {
		b, err := json.MarshalIndent(theConfiguration, "", "  ")
		if nil != err {
			exitwithstatus.Message("%s: configuration marshal error: %s", program, err)
		}
		fmt.Printf("%s\n", b)
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	if len(options["verbose"]) > 0 {
		log.Debugf("theConfiguration: %v", theConfiguration)
	}

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// start the peer registry
	log.Info("initialise registry")
	err = registry.Initialise()
	if nil != err {
		log.Criticalf("registry initialise error: %s", err)
		exitwithstatus.Message("registry initialise error: %s", err)
	}
	defer registry.Finalise()

	// start the reservation ledger
	log.Info("initialise reservation")
	err = reservation.Initialise()
	if nil != err {
		log.Criticalf("reservation initialise error: %s", err)
		exitwithstatus.Message("reservation initialise error: %s", err)
	}
	defer reservation.Finalise()

	// start the matching engine
	log.Info("initialise market")
	err = market.Initialise(time.Duration(theConfiguration.Timeouts.OfferWindow) * time.Second)
	if nil != err {
		log.Criticalf("market initialise error: %s", err)
		exitwithstatus.Message("market initialise error: %s", err)
	}
	defer market.Finalise()

	// start the purchase coordinator
	log.Info("initialise purchase")
	err = purchase.Initialise(time.Duration(theConfiguration.Timeouts.PurchaseWindow) * time.Second)
	if nil != err {
		log.Criticalf("purchase initialise error: %s", err)
		exitwithstatus.Message("purchase initialise error: %s", err)
	}
	defer purchase.Finalise()

	// the state modules are all up
	// so any previously saved state can be restored
	// before the network listeners start
	log.Info("initialise snapshot")
	err = snapshot.Initialise(theConfiguration.CacheFile, time.Duration(theConfiguration.Timeouts.SaveInterval)*time.Second)
	if nil != err {
		log.Criticalf("snapshot initialise error: %s", err)
		exitwithstatus.Message("snapshot initialise error: %s", err)
	}
	defer snapshot.Finalise()

	err = snapshot.Load()
	if nil != err {
		log.Criticalf("snapshot reload error: %s", err)
		exitwithstatus.Message("snapshot reload error: %s", err)
	}

	// start up the network processes
	log.Info("initialise dispatch")
	err = dispatch.Initialise(&theConfiguration.Server)
	if nil != err {
		log.Criticalf("dispatch initialise error: %s", err)
		exitwithstatus.Message("dispatch initialise error: %s", err)
	}
	defer dispatch.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

func printHelp(program string) {
	fmt.Printf("usage: %s [--help] [--verbose] [--quiet] [--version] --config-file=FILE [config|version|help]\n", program)
	fmt.Printf("       --help             -h            print this message\n")
	fmt.Printf("       --verbose          -v            log the parsed configuration\n")
	fmt.Printf("       --quiet            -q            suppress console messages\n")
	fmt.Printf("       --version          -V            print version and exit\n")
	fmt.Printf("       --config-file=FILE -c FILE       main configuration file\n")
	fmt.Printf("       config                           print the parsed configuration and exit\n")
}
