// Package solana implements the HAPI Core client for the Anchor program on
// Solana. The same program also serves the bitcoin network.
package solana

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultConfirmTimeout = 90 * time.Second
	commitment            = rpc.CommitmentConfirmed
)

// Client talks to the HapiCore program
type Client struct {
	network   types.Network
	programID solana.PublicKey
	networkPD solana.PublicKey
	rpc       *rpc.Client
	ix        builder

	signer    solana.PrivateKey
	signerErr error

	pollInterval   time.Duration
	confirmTimeout time.Duration
}

var _ hapicore.HapiCore = (*Client)(nil)

// NewClient creates a client for opts.Network. Without --private-key the
// Solana CLI keypair is used when present; reads work without any signer.
func NewClient(opts hapicore.Options) (*Client, error) {
	endpoint, err := parseEndpoint(opts.ProviderURL)
	if err != nil {
		return nil, err
	}
	programID, err := programAddress(opts)
	if err != nil {
		return nil, err
	}
	networkPD, _, err := FindNetworkAddress(programID, opts.Network)
	if err != nil {
		return nil, types.WrapError(types.KindSolanaAddressParse, err, "network account")
	}
	key, signerErr, err := loadSigner(opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Client{
		network:        opts.Network,
		programID:      programID,
		networkPD:      networkPD,
		rpc:            rpc.New(endpoint),
		ix:             builder{programID: programID, network: networkPD},
		signer:         key,
		signerErr:      signerErr,
		pollInterval:   defaultPollInterval,
		confirmTimeout: defaultConfirmTimeout,
	}, nil
}

func parseEndpoint(providerURL string) (string, error) {
	u, err := url.Parse(providerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", types.NewError(types.KindURLParse, "`provider_url`: invalid url %q", providerURL)
	}
	return providerURL, nil
}

func programAddress(opts hapicore.Options) (solana.PublicKey, error) {
	address := opts.ContractAddress
	if address == "" {
		address, _ = opts.Network.DefaultContractAddress()
	}
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, addressError("contract_address", err)
	}
	return key, nil
}

// loadSigner returns the signing key. A missing default keypair is not fatal:
// it is reported through signerErr on the first write.
func loadSigner(privateKey string) (key solana.PrivateKey, signerErr error, err error) {
	if privateKey = strings.TrimSpace(privateKey); privateKey != "" {
		key, err := solana.PrivateKeyFromBase58(privateKey)
		if err != nil {
			return nil, nil, types.WrapError(types.KindSigner, err, "`private_key`")
		}
		return key, nil, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, types.WrapError(types.KindAbsentDefaultConfig, err, "home directory"), nil
	}
	path := filepath.Join(home, ".config", "solana", "id.json")
	if _, err := os.Stat(path); err != nil {
		return nil, types.ErrSigner, nil
	}
	key, err = solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, nil, types.WrapError(types.KindSolanaKeypairFile, err, "`keypair-path`: %s", path)
	}
	return key, nil, nil
}

// ProgramID returns the program address
func (c *Client) ProgramID() solana.PublicKey { return c.programID }

// NetworkAddress returns the network PDA
func (c *Client) NetworkAddress() solana.PublicKey { return c.networkPD }

// RPC exposes the underlying RPC client
func (c *Client) RPC() *rpc.Client { return c.rpc }

// SignerAddress returns the signer's public key, or "" without one
func (c *Client) SignerAddress() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.PublicKey().String()
}

func (c *Client) signerKey() (solana.PublicKey, error) {
	if c.signer == nil {
		if c.signerErr != nil {
			return solana.PublicKey{}, c.signerErr
		}
		return solana.PublicKey{}, types.ErrSigner
	}
	return c.signer.PublicKey(), nil
}

// IsValidAddress checks a base58 public key, or a bitcoin address on the bitcoin network
func (c *Client) IsValidAddress(address string) error {
	if c.network.Schema() == types.SchemaBitcoin {
		return validateBitcoinAddress(address)
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return addressError("address", err)
	}
	return nil
}

func validateBitcoinAddress(address string) error {
	lower := strings.ToLower(address)
	if strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1") {
		if len(address) < 14 || len(address) > 74 {
			return types.NewError(types.KindInvalidData, "invalid bech32 address %q", address)
		}
		return nil
	}
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 25 {
		return types.NewError(types.KindInvalidData, "invalid base58 address %q", address)
	}
	return nil
}

// === accounts ===

func (c *Client) fetch(ctx context.Context, method, name string, key solana.PublicKey, v any) error {
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return notFound(name, key)
	}
	if err != nil {
		return mapRPCError(method, err)
	}
	if res == nil || res.Value == nil {
		return notFound(name, key)
	}
	if !res.Value.Owner.Equals(c.programID) {
		return types.NewError(types.KindInvalidData, "%s %s is owned by %s", name, key, res.Value.Owner)
	}
	return DecodeAccount(name, res.Value.Data.GetBinary(), v)
}

// programAccounts lists the program accounts of one kind that belong to the network
func (c *Client) programAccounts(ctx context.Context, method, name string, networkOffset uint64, extra ...rpc.RPCFilter) (rpc.GetProgramAccountsResult, error) {
	disc := idl.AccountDiscriminator(name)
	filters := []rpc.RPCFilter{
		{DataSize: uint64(idl.AllocatedSize(name))},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(disc[:])}},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: networkOffset, Bytes: solana.Base58(c.networkPD.Bytes())}},
	}
	filters = append(filters, extra...)
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, &rpc.GetProgramAccountsOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    filters,
	})
	if err != nil {
		return nil, mapRPCError(method, err)
	}
	return out, nil
}

func (c *Client) networkAccount(ctx context.Context, method string) (NetworkAccount, error) {
	var n NetworkAccount
	err := c.fetch(ctx, method, idl.AccountNetwork, c.networkPD, &n)
	return n, err
}

func (c *Client) reporterAccount(ctx context.Context, method string, key solana.PublicKey) (ReporterAccount, error) {
	var r ReporterAccount
	if err := c.fetch(ctx, method, idl.AccountReporter, key, &r); err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return r, types.ErrInvalidReporter
		}
		return r, err
	}
	return r, nil
}

// myReporter finds the reporter whose account is the signer
func (c *Client) myReporter(ctx context.Context, method string) (solana.PublicKey, ReporterAccount, error) {
	me, err := c.signerKey()
	if err != nil {
		return solana.PublicKey{}, ReporterAccount{}, err
	}
	out, err := c.programAccounts(ctx, method, idl.AccountReporter, idl.ReporterNetworkOffset,
		rpc.RPCFilter{Memcmp: &rpc.RPCFilterMemcmp{Offset: idl.ReporterAccountOffset, Bytes: solana.Base58(me.Bytes())}},
	)
	if err != nil {
		return solana.PublicKey{}, ReporterAccount{}, err
	}
	for _, keyed := range out {
		var r ReporterAccount
		if err := DecodeAccount(idl.AccountReporter, keyed.Account.Data.GetBinary(), &r); err != nil {
			return solana.PublicKey{}, ReporterAccount{}, err
		}
		if r.Account.Equals(me) {
			return keyed.Pubkey, r, nil
		}
	}
	return solana.PublicKey{}, ReporterAccount{}, types.ErrInvalidReporter
}

// === transactions ===

func (c *Client) send(ctx context.Context, method string, build func(signer solana.PublicKey) ([]solana.Instruction, error)) (types.Tx, error) {
	payer, err := c.signerKey()
	if err != nil {
		return types.Tx{}, err
	}
	instructions, err := build(payer)
	if err != nil {
		return types.Tx{}, err
	}
	sig, err := sendTransaction(ctx, c.rpc, c.signer, method, instructions...)
	if err != nil {
		return types.Tx{}, err
	}
	if err := waitConfirmed(ctx, c.rpc, method, sig, c.pollInterval, c.confirmTimeout); err != nil {
		return types.Tx{}, err
	}
	return types.Tx{Hash: sig.String()}, nil
}

func sendTransaction(ctx context.Context, client *rpc.Client, key solana.PrivateKey, method string, instructions ...solana.Instruction) (solana.Signature, error) {
	payer := key.PublicKey()
	recent, err := client.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Signature{}, mapRPCError(method, err)
	}
	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, types.WrapError(types.KindInvalidData, err, "`%s` transaction", method)
	}
	if _, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(payer) {
			return &key
		}
		return nil
	}); err != nil {
		return solana.Signature{}, types.WrapError(types.KindSigner, err, "`%s` sign", method)
	}
	sig, err := client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{PreflightCommitment: commitment})
	if err != nil {
		return solana.Signature{}, mapRPCError(method, err)
	}
	return sig, nil
}

// waitConfirmed polls the signature status until the cluster confirms it
func waitConfirmed(ctx context.Context, client *rpc.Client, method string, sig solana.Signature, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := client.GetSignatureStatuses(ctx, false, sig)
		if err != nil && ctx.Err() == nil {
			return mapRPCError(method, err)
		}
		if err == nil && len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return programError(method, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return types.WrapError(types.KindTimeout, ctx.Err(), "`%s`: transaction %s not confirmed", method, sig)
		case <-ticker.C:
		}
	}
}

// === authority ===

func (c *Client) SetAuthority(ctx context.Context, address string) (types.Tx, error) {
	newAuthority, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return types.Tx{}, addressError("new-authority", err)
	}
	return c.send(ctx, "set_authority", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.SetAuthority(me, newAuthority)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetAuthority(ctx context.Context) (string, error) {
	n, err := c.networkAccount(ctx, "get_authority")
	if err != nil {
		return "", err
	}
	return n.Authority.String(), nil
}

// === configuration ===

func (c *Client) UpdateStakeConfiguration(ctx context.Context, cfg types.StakeConfiguration) (types.Tx, error) {
	mint, err := solana.PublicKeyFromBase58(cfg.Token)
	if err != nil {
		return types.Tx{}, addressError("stake-token", err)
	}
	info := StakeInfo{UnlockDuration: cfg.UnlockDuration}
	for _, f := range []struct {
		name string
		in   types.Amount
		out  *uint64
	}{
		{"validator_stake", cfg.ValidatorStake, &info.ValidatorStake},
		{"tracer_stake", cfg.TracerStake, &info.TracerStake},
		{"publisher_stake", cfg.PublisherStake, &info.PublisherStake},
		{"authority_stake", cfg.AuthorityStake, &info.AuthorityStake},
	} {
		if *f.out, err = toU64(f.name, f.in); err != nil {
			return types.Tx{}, err
		}
	}
	return c.send(ctx, "update_stake_configuration", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.UpdateStakeConfiguration(me, mint, info)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetStakeConfiguration(ctx context.Context) (types.StakeConfiguration, error) {
	n, err := c.networkAccount(ctx, "get_stake_configuration")
	if err != nil {
		return types.StakeConfiguration{}, err
	}
	return n.stakeConfiguration(), nil
}

func (c *Client) UpdateRewardConfiguration(ctx context.Context, cfg types.RewardConfiguration) (types.Tx, error) {
	mint, err := solana.PublicKeyFromBase58(cfg.Token)
	if err != nil {
		return types.Tx{}, addressError("reward-token", err)
	}
	var info RewardInfo
	for _, f := range []struct {
		name string
		in   types.Amount
		out  *uint64
	}{
		{"address_confirmation_reward", cfg.AddressConfirmationReward, &info.AddressConfirmationReward},
		{"address_tracer_reward", cfg.AddressTracerReward, &info.AddressTracerReward},
		{"asset_confirmation_reward", cfg.AssetConfirmationReward, &info.AssetConfirmationReward},
		{"asset_tracer_reward", cfg.AssetTracerReward, &info.AssetTracerReward},
	} {
		if *f.out, err = toU64(f.name, f.in); err != nil {
			return types.Tx{}, err
		}
	}
	return c.send(ctx, "update_reward_configuration", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.UpdateRewardConfiguration(me, mint, info)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetRewardConfiguration(ctx context.Context) (types.RewardConfiguration, error) {
	n, err := c.networkAccount(ctx, "get_reward_configuration")
	if err != nil {
		return types.RewardConfiguration{}, err
	}
	return n.rewardConfiguration(), nil
}

func toU64(field string, a types.Amount) (uint64, error) {
	v, ok := a.Uint64()
	if !ok {
		return 0, types.NewError(types.KindInvalidData, "`%s`: %s does not fit into u64", field, a)
	}
	return v, nil
}

// === reporter ===

func (c *Client) CreateReporter(ctx context.Context, in types.CreateReporterInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	account, err := solana.PublicKeyFromBase58(in.Account)
	if err != nil {
		return types.Tx{}, addressError("account", err)
	}
	reporter, bump, err := FindReporterAddress(c.programID, c.networkPD, in.ID)
	if err != nil {
		return types.Tx{}, addressError("reporter", err)
	}
	args := CreateReporterData{
		ReporterID: u128FromUUID(in.ID),
		Account:    account,
		Name:       in.Name,
		Role:       uint8(in.Role),
		URL:        in.URL,
		Bump:       bump,
	}
	return c.send(ctx, "create_reporter", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.CreateReporter(me, reporter, args)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) UpdateReporter(ctx context.Context, in types.UpdateReporterInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	account, err := solana.PublicKeyFromBase58(in.Account)
	if err != nil {
		return types.Tx{}, addressError("account", err)
	}
	reporter, _, err := FindReporterAddress(c.programID, c.networkPD, in.ID)
	if err != nil {
		return types.Tx{}, addressError("reporter", err)
	}
	args := UpdateReporterData{Account: account, Name: in.Name, Role: uint8(in.Role), URL: in.URL}
	return c.send(ctx, "update_reporter", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.UpdateReporter(me, reporter, args)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetReporter(ctx context.Context, id types.UUID) (types.Reporter, error) {
	key, _, err := FindReporterAddress(c.programID, c.networkPD, id)
	if err != nil {
		return types.Reporter{}, addressError("reporter", err)
	}
	return c.ReporterAt(ctx, key)
}

func (c *Client) GetReporterCount(ctx context.Context) (uint64, error) {
	out, err := c.programAccounts(ctx, "get_reporter_count", idl.AccountReporter, idl.ReporterNetworkOffset)
	if err != nil {
		return 0, err
	}
	return uint64(len(out)), nil
}

func (c *Client) GetReporters(ctx context.Context, skip, take uint64) ([]types.Reporter, error) {
	accounts, err := c.reporterAccounts(ctx, "get_reporters")
	if err != nil {
		return nil, err
	}
	reporters := make([]types.Reporter, 0, len(accounts))
	for _, a := range accounts {
		r, err := a.account.toReporter()
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, r)
	}
	sort.Slice(reporters, func(i, j int) bool { return lessUUID(reporters[i].ID, reporters[j].ID) })
	return page(reporters, skip, take), nil
}

type keyedReporter struct {
	key     solana.PublicKey
	account ReporterAccount
}

func (c *Client) reporterAccounts(ctx context.Context, method string) ([]keyedReporter, error) {
	out, err := c.programAccounts(ctx, method, idl.AccountReporter, idl.ReporterNetworkOffset)
	if err != nil {
		return nil, err
	}
	res := make([]keyedReporter, 0, len(out))
	for _, keyed := range out {
		var r ReporterAccount
		if err := DecodeAccount(idl.AccountReporter, keyed.Account.Data.GetBinary(), &r); err != nil {
			return nil, err
		}
		res = append(res, keyedReporter{key: keyed.Pubkey, account: r})
	}
	return res, nil
}

func (c *Client) ActivateReporter(ctx context.Context) (types.Tx, error) {
	n, err := c.networkAccount(ctx, "activate_reporter")
	if err != nil {
		return types.Tx{}, err
	}
	key, r, err := c.myReporter(ctx, "activate_reporter")
	if err != nil {
		return types.Tx{}, err
	}
	role, err := types.ReporterRoleFromByte(r.Role)
	if err != nil {
		return types.Tx{}, err
	}
	stake := n.stakeConfiguration().StakeFor(role)

	owner := r.Account
	ata, _, err := solana.FindAssociatedTokenAddress(owner, n.StakeMint)
	if err != nil {
		return types.Tx{}, addressError("reporter token account", err)
	}
	balance, err := tokenBalance(ctx, c.rpc, ata)
	if err != nil {
		return types.Tx{}, err
	}
	if balance.Cmp(stake) < 0 {
		return types.Tx{}, types.NewError(types.KindFailedToParseBalance, "insufficient balance: have %s, need %s", balance, stake)
	}
	return c.send(ctx, "activate_reporter", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.ActivateReporter(me, key, n.StakeMint)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) DeactivateReporter(ctx context.Context) (types.Tx, error) {
	key, _, err := c.myReporter(ctx, "deactivate_reporter")
	if err != nil {
		return types.Tx{}, err
	}
	return c.send(ctx, "deactivate_reporter", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.DeactivateReporter(me, key)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) UnstakeReporter(ctx context.Context) (types.Tx, error) {
	n, err := c.networkAccount(ctx, "unstake")
	if err != nil {
		return types.Tx{}, err
	}
	key, _, err := c.myReporter(ctx, "unstake")
	if err != nil {
		return types.Tx{}, err
	}
	return c.send(ctx, "unstake", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.Unstake(me, key, n.StakeMint)
		return []solana.Instruction{ix}, err
	})
}

// === case ===

func (c *Client) CreateCase(ctx context.Context, in types.CreateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	reporter, _, err := c.myReporter(ctx, "create_case")
	if err != nil {
		return types.Tx{}, err
	}
	caseKey, bump, err := FindCaseAddress(c.programID, c.networkPD, in.ID)
	if err != nil {
		return types.Tx{}, addressError("case", err)
	}
	args := CreateCaseData{CaseID: u128FromUUID(in.ID), Name: in.Name, URL: in.URL, Bump: bump}
	return c.send(ctx, "create_case", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.CreateCase(me, reporter, caseKey, args)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) UpdateCase(ctx context.Context, in types.UpdateCaseInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	reporter, _, err := c.myReporter(ctx, "update_case")
	if err != nil {
		return types.Tx{}, err
	}
	caseKey, _, err := FindCaseAddress(c.programID, c.networkPD, in.ID)
	if err != nil {
		return types.Tx{}, addressError("case", err)
	}
	args := UpdateCaseData{Name: in.Name, URL: in.URL, Status: uint8(in.Status)}
	return c.send(ctx, "update_case", func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.UpdateCase(me, reporter, caseKey, args)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetCase(ctx context.Context, id types.UUID) (types.Case, error) {
	key, _, err := FindCaseAddress(c.programID, c.networkPD, id)
	if err != nil {
		return types.Case{}, addressError("case", err)
	}
	return c.CaseAt(ctx, key)
}

func (c *Client) GetCaseCount(ctx context.Context) (uint64, error) {
	out, err := c.programAccounts(ctx, "get_case_count", idl.AccountCase, idl.CaseNetworkOffset)
	if err != nil {
		return 0, err
	}
	return uint64(len(out)), nil
}

func (c *Client) GetCases(ctx context.Context, skip, take uint64) ([]types.Case, error) {
	out, err := c.programAccounts(ctx, "get_cases", idl.AccountCase, idl.CaseNetworkOffset)
	if err != nil {
		return nil, err
	}
	reporters, err := c.reporterAccounts(ctx, "get_cases")
	if err != nil {
		return nil, err
	}
	ids := make(map[solana.PublicKey]types.UUID, len(reporters))
	for _, r := range reporters {
		ids[r.key] = r.account.ID.UUID()
	}

	cases := make([]types.Case, 0, len(out))
	for _, keyed := range out {
		var ca CaseAccount
		if err := DecodeAccount(idl.AccountCase, keyed.Account.Data.GetBinary(), &ca); err != nil {
			return nil, err
		}
		cs, err := ca.toCase(ids[ca.Reporter])
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs)
	}
	sort.Slice(cases, func(i, j int) bool { return lessUUID(cases[i].ID, cases[j].ID) })
	return page(cases, skip, take), nil
}

// === address ===

func (c *Client) CreateAddress(ctx context.Context, in types.CreateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "create_address", in)
}

func (c *Client) UpdateAddress(ctx context.Context, in types.UpdateAddressInput) (types.Tx, error) {
	return c.writeAddress(ctx, "update_address", types.CreateAddressInput(in))
}

func (c *Client) writeAddress(ctx context.Context, method string, in types.CreateAddressInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	addr, err := padded64("address", in.Address)
	if err != nil {
		return types.Tx{}, err
	}
	reporter, _, err := c.myReporter(ctx, method)
	if err != nil {
		return types.Tx{}, err
	}
	caseKey, _, err := FindCaseAddress(c.programID, c.networkPD, in.CaseID)
	if err != nil {
		return types.Tx{}, addressError("case", err)
	}
	entity, bump, err := FindAddressAddress(c.programID, c.networkPD, in.Address)
	if err != nil {
		return types.Tx{}, err
	}
	var args any = UpdateAddressData{Category: uint8(in.Category), Risk: in.Risk}
	if method == "create_address" {
		args = CreateAddressData{Address: addr, Category: uint8(in.Category), Risk: in.Risk, Bump: bump}
	}
	return c.send(ctx, method, func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.entity(method, args, me, reporter, caseKey, entity)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) ConfirmAddress(ctx context.Context, address string) (types.Tx, error) {
	entity, _, err := FindAddressAddress(c.programID, c.networkPD, address)
	if err != nil {
		return types.Tx{}, err
	}
	var a AddressAccount
	if err := c.fetch(ctx, "confirm_address", idl.AccountAddress, entity, &a); err != nil {
		return types.Tx{}, err
	}
	return c.confirm(ctx, "confirm_address", entity, a.CaseID.UUID())
}

func (c *Client) confirm(ctx context.Context, method string, entity solana.PublicKey, caseID types.UUID) (types.Tx, error) {
	reporter, r, err := c.myReporter(ctx, method)
	if err != nil {
		return types.Tx{}, err
	}
	caseKey, _, err := FindCaseAddress(c.programID, c.networkPD, caseID)
	if err != nil {
		return types.Tx{}, addressError("case", err)
	}
	confirmation, bump, err := FindConfirmationAddress(c.programID, entity, r.ID.UUID())
	if err != nil {
		return types.Tx{}, addressError("confirmation", err)
	}
	return c.send(ctx, method, func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.confirm(method, bump, me, reporter, caseKey, entity, confirmation)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) GetAddress(ctx context.Context, address string) (types.Address, error) {
	key, _, err := FindAddressAddress(c.programID, c.networkPD, address)
	if err != nil {
		return types.Address{}, err
	}
	return c.AddressAt(ctx, key)
}

func (c *Client) GetAddressCount(ctx context.Context) (uint64, error) {
	out, err := c.programAccounts(ctx, "get_address_count", idl.AccountAddress, idl.AddressNetworkOffset)
	if err != nil {
		return 0, err
	}
	return uint64(len(out)), nil
}

func (c *Client) GetAddresses(ctx context.Context, skip, take uint64) ([]types.Address, error) {
	out, err := c.programAccounts(ctx, "get_addresses", idl.AccountAddress, idl.AddressNetworkOffset)
	if err != nil {
		return nil, err
	}
	addresses := make([]types.Address, 0, len(out))
	for _, keyed := range out {
		var a AddressAccount
		if err := DecodeAccount(idl.AccountAddress, keyed.Account.Data.GetBinary(), &a); err != nil {
			return nil, err
		}
		addr, err := a.toAddress()
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].Address < addresses[j].Address })
	return page(addresses, skip, take), nil
}

// === asset ===

func (c *Client) CreateAsset(ctx context.Context, in types.CreateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "create_asset", in)
}

func (c *Client) UpdateAsset(ctx context.Context, in types.UpdateAssetInput) (types.Tx, error) {
	return c.writeAsset(ctx, "update_asset", types.CreateAssetInput(in))
}

func (c *Client) writeAsset(ctx context.Context, method string, in types.CreateAssetInput) (types.Tx, error) {
	if err := in.Validate(); err != nil {
		return types.Tx{}, err
	}
	addr, err := padded64("address", in.Address)
	if err != nil {
		return types.Tx{}, err
	}
	assetID, err := padded64("asset_id", in.AssetID)
	if err != nil {
		return types.Tx{}, err
	}
	reporter, _, err := c.myReporter(ctx, method)
	if err != nil {
		return types.Tx{}, err
	}
	caseKey, _, err := FindCaseAddress(c.programID, c.networkPD, in.CaseID)
	if err != nil {
		return types.Tx{}, addressError("case", err)
	}
	entity, bump, err := FindAssetAddress(c.programID, c.networkPD, in.Address, in.AssetID)
	if err != nil {
		return types.Tx{}, err
	}
	var args any = UpdateAssetData{Category: uint8(in.Category), Risk: in.Risk}
	if method == "create_asset" {
		args = CreateAssetData{Address: addr, AssetID: assetID, Category: uint8(in.Category), Risk: in.Risk, Bump: bump}
	}
	return c.send(ctx, method, func(me solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := c.ix.entity(method, args, me, reporter, caseKey, entity)
		return []solana.Instruction{ix}, err
	})
}

func (c *Client) ConfirmAsset(ctx context.Context, address, assetID string) (types.Tx, error) {
	entity, _, err := FindAssetAddress(c.programID, c.networkPD, address, assetID)
	if err != nil {
		return types.Tx{}, err
	}
	var a AssetAccount
	if err := c.fetch(ctx, "confirm_asset", idl.AccountAsset, entity, &a); err != nil {
		return types.Tx{}, err
	}
	return c.confirm(ctx, "confirm_asset", entity, a.CaseID.UUID())
}

func (c *Client) GetAsset(ctx context.Context, address, assetID string) (types.Asset, error) {
	key, _, err := FindAssetAddress(c.programID, c.networkPD, address, assetID)
	if err != nil {
		return types.Asset{}, err
	}
	return c.AssetAt(ctx, key)
}

func (c *Client) GetAssetCount(ctx context.Context) (uint64, error) {
	out, err := c.programAccounts(ctx, "get_asset_count", idl.AccountAsset, idl.AssetNetworkOffset)
	if err != nil {
		return 0, err
	}
	return uint64(len(out)), nil
}

func (c *Client) GetAssets(ctx context.Context, skip, take uint64) ([]types.Asset, error) {
	out, err := c.programAccounts(ctx, "get_assets", idl.AccountAsset, idl.AssetNetworkOffset)
	if err != nil {
		return nil, err
	}
	assets := make([]types.Asset, 0, len(out))
	for _, keyed := range out {
		var a AssetAccount
		if err := DecodeAccount(idl.AccountAsset, keyed.Account.Data.GetBinary(), &a); err != nil {
			return nil, err
		}
		asset, err := a.toAsset()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Address != assets[j].Address {
			return assets[i].Address < assets[j].Address
		}
		return assets[i].AssetID < assets[j].AssetID
	})
	return page(assets, skip, take), nil
}

func lessUUID(a, b types.UUID) bool {
	x, y := a.BigEndian(), b.BigEndian()
	return bytes.Compare(x[:], y[:]) < 0
}

// page applies skip/take to a sorted listing
func page[T any](items []T, skip, take uint64) []T {
	n := uint64(len(items))
	if skip >= n {
		return []T{}
	}
	end := n
	if take < n-skip {
		end = skip + take
	}
	return items[skip:end]
}
