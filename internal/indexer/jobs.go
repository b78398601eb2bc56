package indexer

import (
	"encoding/json"
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// JobKind tells a source how to resolve a job
type JobKind string

const (
	JobLog         JobKind = "log"
	JobTransaction JobKind = "transaction"
	JobReceipt     JobKind = "receipt"
)

// NearReceipt points at a receipt that changed contract data
type NearReceipt struct {
	Hash        string `json:"hash"`
	BlockHeight uint64 `json:"block_height"`
	Timestamp   uint64 `json:"timestamp"`
}

// Job is one unit of work: an EVM log, a Solana transaction or a NEAR receipt
type Job struct {
	Log         *ethtypes.Log
	Transaction string
	Receipt     *NearReceipt
}

func LogJob(log ethtypes.Log) Job { return Job{Log: &log} }

func TransactionJob(signature string) Job { return Job{Transaction: signature} }

func ReceiptJob(r NearReceipt) Job { return Job{Receipt: &r} }

// Kind returns the job variant
func (j Job) Kind() JobKind {
	switch {
	case j.Log != nil:
		return JobLog
	case j.Receipt != nil:
		return JobReceipt
	default:
		return JobTransaction
	}
}

func (j Job) String() string {
	switch j.Kind() {
	case JobLog:
		return fmt.Sprintf("log %s#%d", j.Log.TxHash.Hex(), j.Log.Index)
	case JobReceipt:
		return "receipt " + j.Receipt.Hash
	default:
		return "tx " + j.Transaction
	}
}

type jobJSON struct {
	Log                *ethtypes.Log `json:"Log,omitempty"`
	Transaction        *string       `json:"Transaction,omitempty"`
	TransactionReceipt *NearReceipt  `json:"TransactionReceipt,omitempty"`
}

// MarshalJSON writes the variant as a single-key object
func (j Job) MarshalJSON() ([]byte, error) {
	switch j.Kind() {
	case JobLog:
		return json.Marshal(jobJSON{Log: j.Log})
	case JobReceipt:
		return json.Marshal(jobJSON{TransactionReceipt: j.Receipt})
	default:
		tx := j.Transaction
		return json.Marshal(jobJSON{Transaction: &tx})
	}
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var v jobJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	switch {
	case v.Log != nil:
		*j = Job{Log: v.Log}
	case v.TransactionReceipt != nil:
		*j = Job{Receipt: v.TransactionReceipt}
	case v.Transaction != nil:
		*j = Job{Transaction: *v.Transaction}
	default:
		return fmt.Errorf("unknown job %s", data)
	}
	return nil
}

// PersistedState is what survives a restart
type PersistedState struct {
	Cursor Cursor `json:"cursor"`
	Jobs   []Job  `json:"jobs"`
}
