// Command groupnode wires one task's worth of group-communication
// components: it loads the task's job descriptor, builds an operator per
// declared entry, serves the default gRPC transport, and (if this task is
// the driver) the name registry alongside it. A task started with a
// non-empty -diagnostics address also serves the diagnostics HTTP
// endpoint. It is a reference wiring, not the job framework itself — an
// evaluator embeds the same pieces into its own task runtime.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"

	"google.golang.org/grpc"

	"github.com/jabolina/grouptopo/pkg/grouptopo/client"
	"github.com/jabolina/grouptopo/pkg/grouptopo/codec"
	"github.com/jabolina/grouptopo/pkg/grouptopo/config"
	"github.com/jabolina/grouptopo/pkg/grouptopo/diagnostics"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/metrics"
	"github.com/jabolina/grouptopo/pkg/grouptopo/nameservice"
	"github.com/jabolina/grouptopo/pkg/grouptopo/operator"
	"github.com/jabolina/grouptopo/pkg/grouptopo/sender"
	"github.com/jabolina/grouptopo/pkg/grouptopo/transportpb"
)

func main() {
	configPath := flag.String("config", "job.toml", "path to the job's TOML descriptor")
	listenAddr := flag.String("listen", ":7070", "address this task's Transport service listens on")
	diagAddr := flag.String("diagnostics", "", "address the read-only diagnostics server listens on; empty disables it")
	driverEndpoint := flag.String("driver", "", "driver task's Transport endpoint; required unless this task is the driver")
	isDriver := flag.Bool("is-driver", false, "run the name registry locally instead of dialing -driver")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logging.NewDefaultLogger()
	if *debug {
		log.ToggleDebug(true)
	}

	jd, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading %s: %v", *configPath, err)
	}

	rec := metrics.Recorder(metrics.Noop{})

	var registry *nameservice.Registry
	var dir nameservice.Directory
	if *isDriver {
		registry = nameservice.NewRegistry()
		dir = registry
	} else {
		if *driverEndpoint == "" {
			log.Fatalf("-driver is required when -is-driver is not set")
		}
		dir = nameservice.NewGRPCNameLookup(*driverEndpoint)
	}

	grpcSender := sender.NewGRPCSender(dir, log)
	defer grpcSender.Close()

	taskClient := client.New(ids.TaskID(jd.SelfTaskID), log, dir, *listenAddr)

	for _, gd := range jd.Groups {
		gc := taskClient.GroupFor(ids.GroupName(gd.Name))
		for _, od := range gd.Operators {
			cfg := jd.OperatorConfig(gd.Name, od)
			handle := operator.New[[]byte](cfg, codec.NewJSON[[]byte](), grpcSender, dir, log, rec)
			if err := gc.Register(handle); err != nil {
				log.Fatalf("registering operator %s/%s: %v", gd.Name, od.Name, err)
			}
		}
	}

	router := client.NewMessageRouter(taskClient, registry)
	grpcServer := grpc.NewServer()
	transportpb.RegisterTransportServer(grpcServer, router)

	lis, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("listening on %s: %v", *listenAddr, err)
	}
	go func() {
		log.Infof("task %s: serving transport on %s", jd.SelfTaskID, *listenAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorf("transport server stopped: %v", err)
		}
	}()

	if err := taskClient.Register(context.Background()); err != nil {
		log.Fatalf("registering task %s: %v", jd.SelfTaskID, err)
	}

	if *diagAddr != "" {
		go func() {
			log.Infof("task %s: serving diagnostics on %s", jd.SelfTaskID, *diagAddr)
			if err := http.ListenAndServe(*diagAddr, diagnostics.New(taskClient)); err != nil {
				log.Errorf("diagnostics server stopped: %v", err)
			}
		}()
	}

	if err := taskClient.InitializeAll(context.Background()); err != nil {
		log.Fatalf("initializing task %s: %v", jd.SelfTaskID, err)
	}

	log.Infof("task %s: all operators initialized", jd.SelfTaskID)
	select {}
}
