// Command hqpikd is the hierarchical-QP inverse-kinematics controller
// daemon: it loads a startup config, builds the kinematic tree and
// task manager it describes, and runs the realtime tick loop
// alongside the command surface, the visualizer sink, and the
// monitoring stream until told to stop.
package main

import (
	"flag"
	"log"

	"github.com/taskstack/hqpik/internal/daemon"
)

func main() {
	configPath := flag.String("config", "hqpikd.yaml", "path to the startup config file")
	flag.Parse()

	if err := daemon.Run(*configPath); err != nil {
		log.Fatalf("[hqpikd] %v", err)
	}
}
