// xcctool works with the cross-contract-call wire protocol offline: derive
// representative and implicit identities, encode dispatch payloads, and
// decode payloads or promise result buffers captured from the engine.
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/nearbridge/xcc/codec"
	"github.com/nearbridge/xcc/log"
	"github.com/nearbridge/xcc/xcc"
)

var (
	Version = "dev"
	Commit  = "none"
)

func decodeHexArg(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

func parseBalance(s string) (xcc.Balance, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return xcc.Balance{}, fmt.Errorf("invalid balance: %q", s)
	}
	return codec.Uint128FromBig(v)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "xcctool",
		Short: "Cross-contract-call protocol tooling",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var debug string
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "comma-separated log modules to enable")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log.InitLogger("debug")
		log.EnableModules(debug)
	}

	var engineAccount string
	var representativeCmd = &cobra.Command{
		Use:   "representative <evm-address>",
		Short: "Derive the host-ledger representative account of an EVM address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !common.IsHexAddress(args[0]) {
				fmt.Fprintf(os.Stderr, "not an EVM address: %s\n", args[0])
				os.Exit(1)
			}
			id := xcc.AddressSubAccount(common.HexToAddress(args[0]), engineAccount)
			fmt.Printf("%s\n", id)
			fmt.Printf("implicit address: %s\n", xcc.ImplicitAddress(id))
		},
	}
	representativeCmd.Flags().StringVar(&engineAccount, "engine", "aurora", "engine account id on the host ledger")

	var implicitCmd = &cobra.Command{
		Use:   "implicit <account-id>",
		Short: "Derive the implicit EVM address of a host-ledger account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s\n", xcc.ImplicitAddress(args[0]))
		},
	}

	var (
		target   string
		method   string
		argsHex  string
		balance  string
		gas      uint64
		delayed  bool
		cbTarget string
		cbMethod string
		cbArgs   string
		cbBal    string
		cbGas    uint64
	)
	var encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Encode a dispatch payload for the cross-contract-call precompile",
		Run: func(cmd *cobra.Command, args []string) {
			buildOne := func(target, method, argsHex, balance string, gas uint64) xcc.PromiseCreateArgs {
				argBytes, err := decodeHexArg(argsHex)
				if err != nil {
					fmt.Fprintf(os.Stderr, "invalid args hex: %v\n", err)
					os.Exit(1)
				}
				bal, err := parseBalance(balance)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					os.Exit(1)
				}
				return xcc.PromiseCreateArgs{
					TargetAccountID: target,
					Method:          method,
					Args:            argBytes,
					Balance:         bal,
					NearGas:         gas,
				}
			}

			var promise xcc.Promise = buildOne(target, method, argsHex, balance, gas)
			if cbTarget != "" {
				base := promise.(xcc.PromiseCreateArgs)
				promise = base.Then(buildOne(cbTarget, cbMethod, cbArgs, cbBal, cbGas))
			}

			mode := xcc.ModeEager
			if delayed {
				mode = xcc.ModeDelayed
			}
			payload, err := xcc.EncodeDispatchPayload(mode, promise)
			if err != nil {
				fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("0x%x\n", payload)
		},
	}
	encodeCmd.Flags().StringVar(&target, "target", "", "target account id")
	encodeCmd.Flags().StringVar(&method, "method", "", "method name")
	encodeCmd.Flags().StringVar(&argsHex, "args", "", "argument bytes, hex")
	encodeCmd.Flags().StringVar(&balance, "balance", "0", "attached balance, yocto")
	encodeCmd.Flags().Uint64Var(&gas, "gas", 0, "gas allowance")
	encodeCmd.Flags().BoolVar(&delayed, "delayed", false, "encode with the delayed execution mode")
	encodeCmd.Flags().StringVar(&cbTarget, "callback-target", "", "callback target account id")
	encodeCmd.Flags().StringVar(&cbMethod, "callback-method", "", "callback method name")
	encodeCmd.Flags().StringVar(&cbArgs, "callback-args", "", "callback argument bytes, hex")
	encodeCmd.Flags().StringVar(&cbBal, "callback-balance", "0", "callback attached balance, yocto")
	encodeCmd.Flags().Uint64Var(&cbGas, "callback-gas", 0, "callback gas allowance")
	encodeCmd.MarkFlagRequired("target")
	encodeCmd.MarkFlagRequired("method")

	printPromise := func(prefix string, p xcc.PromiseCreateArgs) {
		fmt.Printf("%starget:  %s\n", prefix, p.TargetAccountID)
		fmt.Printf("%smethod:  %s\n", prefix, p.Method)
		fmt.Printf("%sargs:    0x%x\n", prefix, p.Args)
		fmt.Printf("%sbalance: %s\n", prefix, p.Balance.String())
		fmt.Printf("%sgas:     %d\n", prefix, p.NearGas)
	}

	var decodeCmd = &cobra.Command{
		Use:   "decode <payload-hex>",
		Short: "Decode a dispatch payload",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload, err := decodeHexArg(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid payload hex: %v\n", err)
				os.Exit(1)
			}
			mode, promise, err := xcc.DecodeDispatchPayload(payload)
			if err != nil {
				fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
				os.Exit(1)
			}
			modeName := "eager"
			if mode == xcc.ModeDelayed {
				modeName = "delayed"
			}
			fmt.Printf("mode: %s\n", modeName)
			switch p := promise.(type) {
			case xcc.PromiseCreateArgs:
				printPromise("", p)
			case xcc.PromiseWithCallback:
				fmt.Println("base:")
				printPromise("  ", p.Base)
				fmt.Println("callback:")
				printPromise("  ", p.Callback)
			}
		},
	}

	var resultsCmd = &cobra.Command{
		Use:   "results <buffer-hex>",
		Short: "Decode a promise result buffer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			buf, err := decodeHexArg(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid buffer hex: %v\n", err)
				os.Exit(1)
			}
			results, err := xcc.DecodePromiseResults(buf)
			if err != nil {
				fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
				os.Exit(1)
			}
			for i, res := range results {
				switch res.Status {
				case xcc.NotReady:
					fmt.Printf("%d: not ready\n", i)
				case xcc.Failed:
					fmt.Printf("%d: failed\n", i)
				case xcc.Successful:
					fmt.Printf("%d: successful, output 0x%x\n", i, res.Output)
				}
			}
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xcctool %s (%s)\n", Version, Commit)
		},
	}

	rootCmd.AddCommand(representativeCmd, implicitCmd, encodeCmd, decodeCmd, resultsCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
