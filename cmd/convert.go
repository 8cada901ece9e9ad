package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/spf13/cobra"
)

var convertDecimals int

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between token amounts, base units and hex",
	Long: `Convert between human amounts and the integer base units a contract sees.

Units: eth, gwei, wei, token, raw, hex
"token" and "raw" use the precision given by --decimals (default 18).
A value starting with 0x is read as hex.

Examples:
  raisin convert 1.5 eth                  # wei + gwei + hex
  raisin convert 50 gwei                  # eth + wei
  raisin convert 2.5 token --decimals 6   # 2500000
  raisin convert 2500000 raw --decimals 6 # 2.5
  raisin convert 0xff                     # 255`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, pairs, err := convertAmount(args[0], unit, convertDecimals)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(title, pairs))
		return nil
	},
}

// convertAmount renders amount in every unit related to unit. An empty unit
// means wei, or hex when amount has a 0x prefix.
func convertAmount(amount, unit string, decimals int) (string, [][2]string, error) {
	unit = strings.ToLower(unit)
	if unit == "" {
		unit = "wei"
		if strings.HasPrefix(strings.ToLower(amount), "0x") {
			unit = "hex"
		}
	}

	switch unit {
	case "eth", "ether":
		wei, err := units.ToBaseUnits(amount, 18)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " ETH")},
			{"Gwei", ui.Val(units.MustFromBaseUnits(wei, 9) + " gwei")},
			{"Wei", ui.Val(wei.String() + " wei")},
			{"Hex", ui.Val("0x" + wei.Text(16))},
		}, nil
	case "gwei":
		wei, err := units.ToBaseUnits(amount, 9)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " gwei")},
			{"ETH", ui.Val(units.MustFromBaseUnits(wei, 18) + " ETH")},
			{"Wei", ui.Val(wei.String() + " wei")},
			{"Hex", ui.Val("0x" + wei.Text(16))},
		}, nil
	case "wei":
		wei, err := parseInteger(amount, 10)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(wei.String() + " wei")},
			{"ETH", ui.Val(units.MustFromBaseUnits(wei, 18) + " ETH")},
			{"Gwei", ui.Val(units.MustFromBaseUnits(wei, 9) + " gwei")},
			{"Hex", ui.Val("0x" + wei.Text(16))},
		}, nil
	case "token":
		raw, err := units.ToBaseUnits(amount, decimals)
		if err != nil {
			return "", nil, err
		}
		return "Token Amount", [][2]string{
			{"Input", ui.Val(amount)},
			{"Decimals", ui.Val(fmt.Sprint(decimals))},
			{"Base units", ui.Val(raw.String())},
			{"Hex", ui.Val("0x" + raw.Text(16))},
		}, nil
	case "raw":
		raw, err := parseInteger(amount, 10)
		if err != nil {
			return "", nil, err
		}
		human, err := units.FromBaseUnits(raw, decimals)
		if err != nil {
			return "", nil, err
		}
		return "Token Amount", [][2]string{
			{"Base units", ui.Val(raw.String())},
			{"Decimals", ui.Val(fmt.Sprint(decimals))},
			{"Amount", ui.Val(human)},
		}, nil
	case "hex":
		if strings.HasPrefix(strings.ToLower(amount), "0x") {
			n, err := parseInteger(amount[2:], 16)
			if err != nil {
				return "", nil, err
			}
			return "Hex → Decimal", [][2]string{
				{"Hex", ui.Val(amount)},
				{"Decimal", ui.Val(n.String())},
			}, nil
		}
		n, err := parseInteger(amount, 10)
		if err != nil {
			return "", nil, err
		}
		return "Decimal → Hex", [][2]string{
			{"Decimal", ui.Val(n.String())},
			{"Hex", ui.Val("0x" + n.Text(16))},
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown unit %q: use eth, gwei, wei, token, raw or hex", unit)
	}
}

func parseInteger(s string, base int) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), base)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is not a non-negative base-%d integer", units.ErrInvalidAmount, s, base)
	}
	return n, nil
}

func init() {
	convertCmd.Flags().IntVar(&convertDecimals, "decimals", 18, "token precision for the token and raw units")
}
