package text

import (
	"github.com/ValentinKolb/dPool/cmd/util"
	"github.com/ValentinKolb/dPool/lib/pool"
	"github.com/ValentinKolb/dPool/rpc/client"
	"github.com/ValentinKolb/dPool/rpc/common"
	textService "github.com/ValentinKolb/dPool/services/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	composePool *pool.ClientPool[textService.ComposeReviewClient]
	handler     *textService.Handler

	// TextCommands represents the text service command group
	TextCommands = &cobra.Command{
		Use:                "text",
		Short:              "Upload review texts through a pooled compose-review client",
		PersistentPreRunE:  setupTextClient,
		PersistentPostRunE: closeTextClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add pool and transport flags to the text commands
	util.SetupPoolFlags(TextCommands)

	key := "log-level"
	TextCommands.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	// Add subcommands
	TextCommands.AddCommand(uploadCmd)
	TextCommands.AddCommand(getCmd)
	TextCommands.AddCommand(perfTestCmd)
}

// setupTextClient creates the compose-review client pool and the text service on top of it
func setupTextClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	newTransport, err := util.GetTransportFactory()
	if err != nil {
		return err
	}

	factory := client.NewFactory(
		string(common.ServiceTypeComposeReview),
		*util.GetClientConfig(),
		newTransport,
		s,
		client.ComposeReviewStub(util.GetServiceID()),
	)

	composePool, err = pool.NewClientPool(util.GetPoolConfig(string(common.ServiceTypeComposeReview)), factory)
	if err != nil {
		return err
	}

	handler = textService.NewHandler(composePool, util.GetRetries())
	return nil
}

// closeTextClient closes the client pool and all idle connections
func closeTextClient(_ *cobra.Command, _ []string) error {
	if composePool == nil {
		return nil
	}
	return composePool.Close()
}
