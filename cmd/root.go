package cmd

import "github.com/spf13/cobra"

var BuildVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Session authentication service",
	Long: "authgate runs and administers a session authentication service with\n" +
		"pluggable strategies: HTTP basic, in-memory sessions, expiring sessions,\n" +
		"and database-backed sessions that survive restarts.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the authgate version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("authgate %s\n", BuildVersion)
		},
	})
}

func Execute() error {
	return rootCmd.Execute()
}
