package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the recorded profile and start fresh",
		Run:   runReset,
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed {
		fmt.Print("this discards all recorded fights and generated cards; type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("aborted")
			return
		}
	}

	pipe, _, cleanup, err := bootstrap()
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer cleanup()

	if err := pipe.ResetProfile(); err != nil {
		exitErr("reset profile", err)
	}
	fmt.Println("profile reset")
}
