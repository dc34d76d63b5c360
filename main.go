// Command gohighway runs a hierarchical driving experiment on the
// highway environment. A discrete high-level agent issues macro
// actions (lane changes, speed changes, forward movement) which goal
// controllers translate into primitive acceleration and steering
// commands.
package main

import (
	"flag"
	"path/filepath"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/gohighway/agent"
	"github.com/samuelfneumann/gohighway/agent/heuristic"
	"github.com/samuelfneumann/gohighway/agent/random"
	"github.com/samuelfneumann/gohighway/environment/highway"
	"github.com/samuelfneumann/gohighway/environment/hrl"
	"github.com/samuelfneumann/gohighway/experiment"
	"github.com/samuelfneumann/gohighway/experiment/trackers"
)

var (
	configPath = flag.String("config", "", "environment config file path "+
		"(empty means defaults)")
	agentName = flag.String("agent", "heuristic",
		"agent to run (heuristic or random)")
	seed   = flag.Uint64("seed", 192382, "random seed")
	steps  = flag.Uint("steps", 10_000, "number of high-level steps to run")
	shaped = flag.Bool("shaped", true, "recompute per-tick rewards from "+
		"vehicle state instead of using the built-in task reward")
	outDir = flag.String("out", ".", "directory for saved experiment data")

	logLevels = map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}
	logLevel = flag.String("log.level", "info",
		"log level (trace debug info warn error)")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	config, err := highway.LoadConfig(*configPath)
	if err != nil {
		log.Panicf("could not load config: %v", err)
	}
	log.Infof("%+v", config)

	// Create the simulator
	starter := highway.NewStarter(config.LanesCount,
		config.RewardSpeedBounds(), *seed)
	task := highway.NewDrive(starter)
	sim, _, err := highway.New(task, config, 1.0, *seed)
	if err != nil {
		log.Panicf("could not create environment: %v", err)
	}

	// Optionally recompute per-tick rewards from vehicle state
	var wrapped hrl.Simulator = sim
	if *shaped {
		wrapped, _, err = hrl.NewShapedReward(sim,
			hrl.DefaultShapedRewardConfig())
		if err != nil {
			log.Panicf("could not create reward shaper: %v", err)
		}
	}

	// Replace the primitive action space with the macro actions
	env, _, err := hrl.NewMacroActions(wrapped, hrl.DefaultConfig())
	if err != nil {
		log.Panicf("could not create macro actions: %v", err)
	}

	var a agent.Agent
	switch *agentName {
	case "heuristic":
		a = heuristic.New(wrapped)
	case "random":
		a, err = random.New(env.ActionSpec(), *seed)
		if err != nil {
			log.Panicf("could not create agent: %v", err)
		}
	default:
		log.Panicf("no such agent %v", *agentName)
	}

	// Experiment
	returns := trackers.NewReturn(filepath.Join(*outDir, "returns.bin"))
	lengths := trackers.NewEpisodeLength(filepath.Join(*outDir,
		"lengths.bin"))
	stats := trackers.NewEpisodeStats(filepath.Join(*outDir, "episodes.csv"))

	e := experiment.NewOnline(env, a, *steps, returns, lengths, stats)
	if err := e.Run(); err != nil {
		log.Panicf("experiment failed: %v", err)
	}
	e.Save()

	data := trackers.LoadData(filepath.Join(*outDir, "returns.bin"))
	log.WithField("episodes", len(data)).Info("saved experiment data")
}
