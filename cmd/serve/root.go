package serve

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/dPool/cmd/util"
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the compose-review RPC server",
		Long:    `Start the compose-review RPC server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DPOOL_<flag> (e.g. DPOOL_ADMIN_ENDPOINT=:9091)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// add flags
	key := "services"
	ServeCmd.PersistentFlags().String(key, "100=compose-review", cmdUtil.WrapString("Comma-separated list of services to serve. Format: ID=TYPE where TYPE is one of: compose-review"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:9090", cmdUtil.WrapString("The address on which the RPC server will listen (e.g. localhost:9090, /tmp/dpool.sock, ...)"))

	key = "admin-endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:9091", cmdUtil.WrapString("The address of the HTTP admin server (health, metrics, reviews). Empty disables it"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 30, cmdUtil.WrapString("Write timeout of a response in seconds (0 disables it)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 4, cmdUtil.WrapString("Number of requests processed concurrently per connection"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupTransportFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	services, err := parseServices(viper.GetString("services"))
	if err != nil {
		return err
	}
	serveCmdConfig.Services = services

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.AdminEndpoint = viper.GetString("admin-endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.WorkersPerConn = viper.GetInt("workers-per-conn")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = cmdUtil.GetTransportConfig()

	return nil
}

// parseServices parses a list of ID=TYPE pairs
func parseServices(value string) ([]common.ServerService, error) {
	services := make([]common.ServerService, 0)
	for _, serviceConfig := range strings.Split(value, ",") {
		parts := strings.Split(serviceConfig, "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid service format: %s (expected ID=TYPE)", serviceConfig)
		}

		serviceID, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid service ID %s: %v", parts[0], err)
		}

		serviceType := common.ServiceType(strings.TrimSpace(parts[1]))
		switch serviceType {
		case common.ServiceTypeComposeReview:
		default:
			return nil, fmt.Errorf("invalid service type: %s (expected one of: compose-review)", serviceType)
		}

		services = append(services, common.ServerService{
			ServiceID: serviceID,
			Type:      serviceType,
		})
	}
	return services, nil
}

// run starts the RPC server and the admin server and blocks until a termination signal arrives
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport(serveCmdConfig.WorkersPerConn)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s)
	if err := serv.Start(); err != nil {
		return err
	}

	errs := make(chan error, 2)
	go func() { errs <- serv.Serve() }()

	var admin *server.AdminServer
	if serveCmdConfig.AdminEndpoint != "" {
		admin = server.NewAdminServer(serveCmdConfig.AdminEndpoint, serv)
		if err := admin.Start(); err != nil {
			_ = serv.Close()
			return err
		}
		go func() { errs <- admin.Serve() }()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var serveErr error
	select {
	case received := <-sig:
		server.Logger.Infof("Received %s, shutting down", received)
	case serveErr = <-errs:
		server.Logger.Errorf("Server stopped: %v", serveErr)
	}

	var closeErr error
	if admin != nil {
		closeErr = admin.Close(shutdownTimeout)
	}
	return errors.Join(serveErr, closeErr, serv.Close())
}
