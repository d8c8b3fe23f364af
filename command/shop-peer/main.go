// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	server  string
	name    string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "shop-peer"
	app.Usage = "command line peer for the shopping server"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "server, s",
			Value: "127.0.0.1:9000",
			Usage: " server UDP endpoint `HOST:PORT`",
		},
		cli.StringFlag{
			Name:  "name, n",
			Value: "",
			Usage: "*peer `NAME`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "register",
			Usage:     "join the marketplace",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "ip, i",
					Value: "127.0.0.1",
					Usage: " address other peers can reach `IP`",
				},
				cli.IntFlag{
					Name:  "udp-port, u",
					Value: 0,
					Usage: "*port for server messages `PORT`",
				},
				cli.IntFlag{
					Name:  "tcp-port, t",
					Value: 0,
					Usage: "*port for purchase connections `PORT`",
				},
			},
			Action: runRegister,
		},
		{
			Name:   "deregister",
			Usage:  "leave the marketplace",
			Action: runDeregister,
		},
		{
			Name:      "search",
			Usage:     "announce a want and wait for the outcome",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: "*item description `TEXT`",
				},
				cli.IntFlag{
					Name:  "max-price, m",
					Value: 0,
					Usage: "*highest acceptable `PRICE`",
				},
			},
			Action: runSearch,
		},
		{
			Name:      "offer",
			Usage:     "bid against a search",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				requestIDFlag,
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.IntFlag{
					Name:  "price, p",
					Value: 0,
					Usage: "*asking `PRICE`",
				},
			},
			Action: runOffer,
		},
		{
			Name:      "accept",
			Usage:     "take the negotiated price",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				requestIDFlag,
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.IntFlag{
					Name:  "price, p",
					Value: 0,
					Usage: "*the buyer's maximum `PRICE`",
				},
			},
			Action: runAccept,
		},
		{
			Name:      "refuse",
			Usage:     "decline the negotiated price",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				requestIDFlag,
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.IntFlag{
					Name:  "price, p",
					Value: 0,
					Usage: "*the buyer's maximum `PRICE`",
				},
			},
			Action: runRefuse,
		},
		{
			Name:      "buy",
			Usage:     "confirm a reserved purchase",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				requestIDFlag,
			},
			Action: runBuy,
		},
		{
			Name:      "cancel",
			Usage:     "withdraw a search or a reservation",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				requestIDFlag,
			},
			Action: runCancel,
		},
		{
			Name:      "listen",
			Usage:     "print server messages and answer purchase connections",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "udp-port, u",
					Value: 0,
					Usage: "*registered UDP `PORT`",
				},
				cli.IntFlag{
					Name:  "tcp-port, t",
					Value: 0,
					Usage: "*registered TCP `PORT`",
				},
				cli.StringFlag{
					Name:  "cc-number",
					Value: "",
					Usage: "*credit card `NUMBER` for purchases",
				},
				cli.StringFlag{
					Name:  "cc-expiry",
					Value: "",
					Usage: "*credit card expiry `MM/YY`",
				},
				cli.StringFlag{
					Name:  "address, a",
					Value: "",
					Usage: "*shipping `ADDRESS` (no spaces)",
				},
			},
			Action: runListen,
		},
	}

	app.Before = func(c *cli.Context) error {
		m := &metadata{
			server:  c.GlobalString("server"),
			name:    c.GlobalString("name"),
			verbose: c.GlobalBool("verbose"),
			e:       app.ErrWriter,
			w:       app.Writer,
		}
		app.Metadata = map[string]interface{}{
			"config": m,
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		cli.HandleExitCoder(cli.NewExitError(err.Error(), 1))
	}
}

var requestIDFlag = cli.StringFlag{
	Name:  "request, r",
	Value: "",
	Usage: "*request `ID` (RQ followed by four digits)",
}
