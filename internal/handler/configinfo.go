package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lingua-daily/internal/config"
	"lingua-daily/internal/dto"
)

// ConfigHandler exposes the public payment configuration clients need to
// assemble transactions and payment URIs.
type ConfigHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

func (h *ConfigHandler) PublicConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ConfigResponse{
		Recipient:     h.cfg.Solana.MerchantAddress,
		USDCMint:      h.cfg.Solana.USDCMint,
		DefaultAmount: 2,
		Aptos: dto.CoinConfig{
			Merchant:     h.cfg.Aptos.MerchantAddress,
			USDCCoinType: h.cfg.Aptos.USDCCoinType,
		},
		Sui: dto.CoinConfig{
			Merchant:     h.cfg.Sui.MerchantAddress,
			USDCCoinType: h.cfg.Sui.USDCCoinType,
		},
		Eth: dto.EthConfig{
			Merchant: h.cfg.EVM.MerchantAddress,
			Chains: map[string]dto.EVMChainConfig{
				"base": {
					ChainID:     8453,
					Name:        "Base",
					RPCURL:      h.cfg.EVM.BaseRPCURL,
					USDCAddress: h.cfg.EVM.BaseUSDC,
				},
				"arbitrum": {
					ChainID:     42161,
					Name:        "Arbitrum",
					RPCURL:      h.cfg.EVM.ArbitrumRPCURL,
					USDCAddress: h.cfg.EVM.ArbitrumUSDC,
				},
			},
		},
	})
}
