package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

type recordingNode struct {
	method string
	params []interface{}
	err    error
}

func (n *recordingNode) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	n.method = method
	n.params = params
	return n.err
}

func newTestProvider(t *testing.T, key string, node Requester) *KeyProvider {
	t.Helper()
	p, err := NewKeyProvider(config.WalletConfig{PrivateKey: key}, big.NewInt(31337), node, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestKeyProvider_Signer(t *testing.T) {
	p := newTestProvider(t, "0x"+testKey, nil)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	expected := crypto.PubkeyToAddress(key.PublicKey)

	first, err := p.Signer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, first.Address)
	assert.Equal(t, expected, first.Opts.From)

	second, err := p.Signer(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first.Opts, second.Opts, "signer must not be cached across calls")
}

func TestKeyProvider_NoKey(t *testing.T) {
	p := newTestProvider(t, "", nil)

	_, err := p.Signer(context.Background())
	assert.ErrorIs(t, err, contracts.ErrWalletNotFound)

	err = p.Request(context.Background(), methodWatchAsset, nil)
	assert.ErrorIs(t, err, contracts.ErrWalletNotFound)

	var nilProvider *KeyProvider
	_, err = nilProvider.Signer(context.Background())
	assert.ErrorIs(t, err, contracts.ErrWalletNotFound)
}

func TestNewKeyProvider_InvalidKey(t *testing.T) {
	_, err := NewKeyProvider(config.WalletConfig{PrivateKey: "zz"}, big.NewInt(1), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestKeyProvider_Request(t *testing.T) {
	t.Run("accounts", func(t *testing.T) {
		p := newTestProvider(t, testKey, nil)

		var accounts []string
		require.NoError(t, p.Request(context.Background(), methodRequestAccounts, &accounts))
		require.Len(t, accounts, 1)

		signer, err := p.Signer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, signer.Address.Hex(), accounts[0])
	})

	t.Run("watch asset", func(t *testing.T) {
		node := &recordingNode{}
		p := newTestProvider(t, testKey, node)

		var ok bool
		require.NoError(t, p.Request(context.Background(), methodWatchAsset, &ok, map[string]string{"type": "ERC20"}))
		assert.True(t, ok)
		assert.Empty(t, node.method)
	})

	t.Run("forwarded", func(t *testing.T) {
		node := &recordingNode{err: errors.New("boom")}
		p := newTestProvider(t, testKey, node)

		err := p.Request(context.Background(), "eth_gasPrice", nil)
		assert.EqualError(t, err, "boom")
		assert.Equal(t, "eth_gasPrice", node.method)
	})

	t.Run("no node", func(t *testing.T) {
		p := newTestProvider(t, testKey, nil)
		assert.Error(t, p.Request(context.Background(), "eth_gasPrice", nil))
	})
}
