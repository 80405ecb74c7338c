// Command mqueue-node bootstraps a single cluster member of the
// message-queue service.
package main

import (
	"fmt"
	"os"

	"github.com/jabolina/go-mqueue/pkg/mqueue"
	"github.com/jabolina/go-mqueue/pkg/mqueue/config"
	"github.com/jabolina/go-mqueue/pkg/mqueue/core"
	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("mqueue-node", "Runs one node of the clustered message-queue service.")

	configFile = app.Flag("config", "Path to the node's configuration file.").Short('c').Required().String()
	debug      = app.Flag("debug", "Enable debug-level logging.").Bool()
	groupName  = app.Flag("exchange", "Override cluster.group from the config file.").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *groupName != "" {
		cfg.Cluster.Group = *groupName
	}

	log := definition.NewLogger(cfg.Node.Name)
	log.ToggleDebug(*debug)

	transport, err := core.NewReltTransport(types.NodeID(cfg.Node.ID), cfg.Node.Name, cfg.Cluster.Group, cfg.Node.ProtocolVersion, log)
	if err != nil {
		log.Fatalf("dialing transport: %v", err)
	}

	service := mqueue.NewServiceWithLimits(transport, log, cfg.Limits.Resolve())
	defer service.Close()

	log.Infof("node %s (id %d) joined exchange %q", cfg.Node.Name, cfg.Node.ID, cfg.Cluster.Group)
	select {}
}
