package main

import "github.com/spf13/cobra"

// aliasCmds are the flat read-only commands kept for compatibility
func (a *app) aliasCmds() []*cobra.Command {
	return []*cobra.Command{
		{Use: "get-authority", Short: "Alias of 'authority get'", Args: cobra.NoArgs, RunE: a.getAuthority},
		{Use: "get-stake-configuration", Short: "Alias of 'configuration get-stake'", Args: cobra.NoArgs, RunE: a.getStakeConfiguration},
		{Use: "get-reward-configuration", Short: "Alias of 'configuration get-reward'", Args: cobra.NoArgs, RunE: a.getRewardConfiguration},
		{Use: "get-reporter <id>", Short: "Alias of 'reporter get'", Args: cobra.ExactArgs(1), RunE: a.getReporter},
		{Use: "get-case <id>", Short: "Alias of 'case get'", Args: cobra.ExactArgs(1), RunE: a.getCase},
		{Use: "get-address <address>", Short: "Alias of 'address get'", Args: cobra.ExactArgs(1), RunE: a.getAddress},
	}
}
