package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/Mohsinsiddi/raisin/internal/wallet"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

var newKeyCmd = &cobra.Command{
	Use:   "new-key <name>",
	Short: "Generate a new encrypted keystore",
	Long: `Generate a new private key and write it, encrypted with a password you
choose, to <name>.json in the --path directory (default: <config>/keystore).

The password is asked for twice. With RAISIN_PASSWORD set it is used instead.
The first key created becomes the default keystore.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := expandHome(keyPath)
		if dir == "" {
			dir = filepath.Join(cfg.Dir(), "keystore")
		}
		path := wallet.KeyFilePath(dir, args[0])

		password := env.Get(config.EnvPassword)
		if password == "" {
			var err error
			password, err = wallet.NewPassword(wallet.TerminalPasswordReader(os.Stdin, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
		}

		addr, err := wallet.CreateKeyFile(path, password)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("New Key", [][2]string{
			{"Address", ui.Addr(addr.Hex())},
			{"File", path},
		}))

		fresh, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if fresh.Keystore == "" {
			fresh.Keystore = path
			if err := fresh.Save(); err != nil {
				log.Warn("Could not save default keystore", "err", err)
			} else {
				fmt.Fprintln(out, ui.Hint("set as the default keystore"))
			}
		}
		fmt.Fprintln(out, ui.Success("Your new address is "+addr.Hex()))
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Forget keystore passwords cached in the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := wallet.OpenPasswordCache(cfg.Dir())
		if err != nil {
			return err
		}
		n, err := cache.Clear()
		if err != nil {
			return err
		}
		persistRemember(false)
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Forgot %d cached password(s)", n)))
		return nil
	},
}
