package cmd

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
)

var vapidCmd = &cobra.Command{
	Use:   "vapid",
	Short: "Generate a VAPID keypair for Web Push",
	Long: `Generates a fresh VAPID keypair. Put the keys in the push section of
pocketvibe.yml to enable Web Push notifications.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			return fmt.Errorf("generating VAPID keys: %w", err)
		}

		fmt.Println("Add these to pocketvibe.yml:")
		fmt.Println()
		fmt.Println("push:")
		fmt.Printf("  vapid_public_key: %s\n", publicKey)
		fmt.Printf("  vapid_private_key: %s\n", privateKey)
		fmt.Println("  mailto: you@example.com")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vapidCmd)
}
