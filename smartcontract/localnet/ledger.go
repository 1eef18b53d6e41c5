package localnet

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/pricefeed/smartcontract/localnet/internal/metrics"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

var (
	nativeLoaderProgramID         = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")
	bpfLoaderUpgradeableProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
)

// Program executes instructions addressed to a program id.
// *processor.Processor satisfies it.
type Program interface {
	Process(accounts []*processor.AccountInfo, data []byte) error
}

// Ledger is an in-memory, single-node ledger. Transactions are executed one
// at a time; each processed transaction advances the slot and produces a new
// blockhash.
type Ledger struct {
	log *slog.Logger
	cfg Config

	mu          sync.Mutex
	accounts    map[solana.PublicKey]*processor.AccountInfo
	programs    map[solana.PublicKey]Program
	slot        uint64
	blockhash   solana.Hash
	blockhashes map[solana.Hash]uint64
	txs         map[solana.Signature]*transactionRecord
}

type transactionRecord struct {
	slot   uint64
	err    any
	result *solanarpc.GetTransactionResult
}

func New(cfg Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	l := &Ledger{
		log:         cfg.Logger,
		cfg:         cfg,
		accounts:    make(map[solana.PublicKey]*processor.AccountInfo),
		programs:    make(map[solana.PublicKey]Program),
		blockhashes: make(map[solana.Hash]uint64),
		txs:         make(map[solana.Signature]*transactionRecord),
	}
	l.deployLocked(solana.SystemProgramID, systemProgram{}, nativeLoaderProgramID)
	l.advanceSlotLocked()
	return l, nil
}

// Deploy registers a program under programID, replacing any existing one.
func (l *Ledger) Deploy(programID solana.PublicKey, program Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deployLocked(programID, program, bpfLoaderUpgradeableProgramID)
	l.log.Debug("localnet: deployed program", "program_id", programID)
}

// DeployPriceFeed deploys the price feed program under programID, sharing the
// ledger's clock and rent parameters.
func (l *Ledger) DeployPriceFeed(programID solana.PublicKey) (*processor.Processor, error) {
	p, err := processor.New(processor.Config{
		Logger:    l.log,
		ProgramID: programID,
		Clock:     l.cfg.Clock,
		Rent:      l.cfg.Rent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create price feed processor: %w", err)
	}
	l.Deploy(programID, p)
	return p, nil
}

func (l *Ledger) deployLocked(programID solana.PublicKey, program Program, loader solana.PublicKey) {
	l.programs[programID] = program
	l.accounts[programID] = &processor.AccountInfo{
		Key:        programID,
		Executable: true,
		Lamports:   1,
		Owner:      loader,
	}
}

// Airdrop credits lamports to an account, creating it if needed.
func (l *Ledger) Airdrop(pubkey solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[pubkey]
	if !ok {
		account = &processor.AccountInfo{Key: pubkey, Owner: solana.SystemProgramID}
		l.accounts[pubkey] = account
	}
	account.Lamports += lamports
}

// SetAccount stores a copy of account, replacing any existing state.
func (l *Ledger) SetAccount(account *processor.AccountInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[account.Key] = account.Clone()
}

// Account returns a copy of an account's state, or nil if it does not exist.
func (l *Ledger) Account(pubkey solana.PublicKey) *processor.AccountInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[pubkey].Clone()
}

func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

func (l *Ledger) advanceSlotLocked() {
	l.slot++
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], l.slot)
	next := sha256.Sum256(append(l.blockhash[:], slotBytes[:]...))
	l.blockhash = solana.HashFromBytes(next[:])
	l.blockhashes[l.blockhash] = l.slot

	for hash, slot := range l.blockhashes {
		if l.slot-slot > l.cfg.MaxBlockhashAge {
			delete(l.blockhashes, hash)
		}
	}
	metrics.Slot.Set(float64(l.slot))
}

func (l *Ledger) isBlockhashValidLocked(hash solana.Hash) bool {
	slot, ok := l.blockhashes[hash]
	return ok && l.slot-slot <= l.cfg.MaxBlockhashAge
}
