package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"migration-scorer/pkg/logger"
)

// ChainRPC wraps a Solana JSON-RPC endpoint (with optional DAS-style asset
// extensions) behind the fail-soft provider contract. Unlike the REST
// providers above it speaks JSON-RPC 2.0 over POST, so it keeps its own
// request plumbing instead of baseClient.get.
type ChainRPC struct {
	endpoint  string
	http      *http.Client
	keys      []string
	keyIdx    atomic.Int32
	requestID atomic.Uint64
	log       *logger.Logger
}

// NewChainRPC constructs a ChainRPC client against endpoint.
func NewChainRPC(endpoint string, keys []string, opts ...ClientOption) *ChainRPC {
	b := &baseClient{http: &http.Client{}, log: logger.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return &ChainRPC{endpoint: endpoint, http: b.http, keys: keys, log: b.log}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// call performs one JSON-RPC request, rotating credentials on 401/429 and
// never retrying otherwise. ctx carries the caller's timeout.
func (c *ChainRPC) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.requestID.Add(1), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("chain_rpc: marshal request: %w", err)
	}

	attempts := len(c.keys)
	if attempts == 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		url := c.endpoint
		if idx := int(c.keyIdx.Load()); idx < len(c.keys) {
			url = url + "?api-key=" + c.keys[idx]
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("chain_rpc: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("chain_rpc: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("chain_rpc: status %d", resp.StatusCode)
			if int(c.keyIdx.Load())+1 < len(c.keys) {
				c.keyIdx.Add(1)
				continue
			}
			return lastErr
		}
		if readErr != nil {
			return fmt.Errorf("chain_rpc: read body: %w", readErr)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("chain_rpc: unexpected status %d", resp.StatusCode)
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			c.log.Warn("malformed chain rpc payload", logger.String("method", method))
			return fmt.Errorf("chain_rpc: malformed response: %w", err)
		}
		if rpcResp.Error != nil {
			return rpcResp.Error
		}
		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("chain_rpc: unmarshal result: %w", err)
			}
		}
		return nil
	}
	return lastErr
}

type mintInfoResult struct {
	Decimals        int    `json:"decimals"`
	MintAuthority   string `json:"mintAuthority"`
	FreezeAuthority string `json:"freezeAuthority"`
}

// GetMintInfo returns decimals and authority state for mint. Zero value and
// false on failure.
func (c *ChainRPC) GetMintInfo(ctx context.Context, mint string) (MintInfo, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r mintInfoResult
	if err := c.call(ctx, "getMintInfo", []interface{}{mint}, &r); err != nil {
		return MintInfo{}, false
	}
	return MintInfo{Decimals: r.Decimals, MintAuthority: r.MintAuthority, FreezeAuthority: r.FreezeAuthority}, true
}

// GetTokenSupply returns the total supply as a float64, or 0 on failure.
func (c *ChainRPC) GetTokenSupply(ctx context.Context, mint string) float64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r struct {
		UIAmount float64 `json:"uiAmount"`
	}
	if err := c.call(ctx, "getTokenSupply", []interface{}{mint}, &r); err != nil {
		return 0
	}
	return r.UIAmount
}

// GetLargestTokenAccounts returns up to the 20 largest token accounts for
// mint, ordered largest first. Nil on failure.
func (c *ChainRPC) GetLargestTokenAccounts(ctx context.Context, mint string) []TokenAccountAmount {
	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()

	var r []struct {
		Address  string  `json:"address"`
		UIAmount float64 `json:"uiAmount"`
	}
	if err := c.call(ctx, "getTokenLargestAccounts", []interface{}{mint}, &r); err != nil {
		return nil
	}

	out := make([]TokenAccountAmount, 0, len(r))
	for _, a := range r {
		out = append(out, TokenAccountAmount{TokenAccount: a.Address, UIAmount: a.UIAmount})
	}
	return out
}

// GetAccountOwner resolves the owning wallet for a token account.
func (c *ChainRPC) GetAccountOwner(ctx context.Context, tokenAccount string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r struct {
		Owner string `json:"owner"`
	}
	if err := c.call(ctx, "getAccountOwner", []interface{}{tokenAccount}, &r); err != nil {
		return "", false
	}
	return r.Owner, r.Owner != ""
}

// GetAccountInfo returns executable/owner info for wallet.
func (c *ChainRPC) GetAccountInfo(ctx context.Context, wallet string) (AccountInfo, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r struct {
		Executable bool   `json:"executable"`
		Owner      string `json:"owner"`
	}
	if err := c.call(ctx, "getAccountInfo", []interface{}{wallet}, &r); err != nil {
		return AccountInfo{}, false
	}
	return AccountInfo{Executable: r.Executable, Owner: r.Owner}, true
}

type txRecordDTO struct {
	Slot            int64            `json:"slot"`
	Timestamp       int64            `json:"timestamp"`
	FeePayer        string           `json:"feePayer"`
	Type            string           `json:"type"`
	NativeTransfers []struct {
		FromUserAccount string  `json:"fromUserAccount"`
		ToUserAccount   string  `json:"toUserAccount"`
		AmountSol       float64 `json:"amountSol"`
	} `json:"nativeTransfers"`
	TokenTransfers []struct {
		FromUserAccount string  `json:"fromUserAccount"`
		ToUserAccount   string  `json:"toUserAccount"`
		Mint            string  `json:"mint"`
		TokenAmount     float64 `json:"tokenAmount"`
	} `json:"tokenTransfers"`
}

// GetTransactionHistory returns up to limit transactions for address,
// optionally filtered by typeFilter (empty means no filter). Nil on
// failure.
func (c *ChainRPC) GetTransactionHistory(ctx context.Context, address string, limit int, typeFilter string) []TxRecord {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	params := []interface{}{address, map[string]interface{}{"limit": limit}}
	if typeFilter != "" {
		params[1].(map[string]interface{})["type"] = typeFilter
	}

	var dtos []txRecordDTO
	if err := c.call(ctx, "getTransactionHistory", params, &dtos); err != nil {
		return nil
	}

	out := make([]TxRecord, 0, len(dtos))
	for _, d := range dtos {
		rec := TxRecord{Slot: d.Slot, Timestamp: d.Timestamp, FeePayer: d.FeePayer, Type: d.Type}
		for _, nt := range d.NativeTransfers {
			rec.NativeTransfers = append(rec.NativeTransfers, NativeTransfer{
				FromUserAccount: nt.FromUserAccount, ToUserAccount: nt.ToUserAccount, AmountSol: nt.AmountSol,
			})
		}
		for _, tt := range d.TokenTransfers {
			rec.TokenTransfers = append(rec.TokenTransfers, TokenTransfer{
				FromUserAccount: tt.FromUserAccount, ToUserAccount: tt.ToUserAccount, Mint: tt.Mint, TokenAmount: tt.TokenAmount,
			})
		}
		out = append(out, rec)
	}
	return out
}

type assetDTO struct {
	ID        string  `json:"id"`
	CreatedAt int64   `json:"created_at"`
	Interface string  `json:"interface"`
	Supply    float64 `json:"supply"`
	Creator   string  `json:"creator"`
}

// GetAssetsByCreator returns up to limit assets (fungible and otherwise)
// created by wallet. Nil on failure.
func (c *ChainRPC) GetAssetsByCreator(ctx context.Context, wallet string, limit int) []Asset {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var dtos []assetDTO
	if err := c.call(ctx, "getAssetsByCreator", []interface{}{wallet, limit}, &dtos); err != nil {
		return nil
	}

	out := make([]Asset, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, Asset{ID: d.ID, CreatedAt: d.CreatedAt, Interface: d.Interface, Supply: d.Supply, Creator: d.Creator})
	}
	return out
}

// GetAsset resolves a single asset by its mint, used by the orchestrator to
// recover a missing creator. ok=false means absent.
func (c *ChainRPC) GetAsset(ctx context.Context, mint string) (Asset, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var dto assetDTO
	if err := c.call(ctx, "getAsset", []interface{}{mint}, &dto); err != nil {
		return Asset{}, false
	}
	return Asset{ID: dto.ID, CreatedAt: dto.CreatedAt, Interface: dto.Interface, Supply: dto.Supply, Creator: dto.Creator}, dto.Creator != ""
}
