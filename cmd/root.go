package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "site",
	Short: "studio site server and content tool",
	Example: `site serve
site db migrate
site login -p <password>
site content get
site content export -f yaml
site content import -i <file>
site content set --path contact.phoneText --value "0252 000 00 00"
site content address -l "Akyaka" -l "Ula, Muğla"
site content add-project -n <name> -u <url>
site content remove-project -i <index>
site analyze -e <emotion> -m <material> -n <nature>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "site server url (default from context or http://localhost:4001)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
