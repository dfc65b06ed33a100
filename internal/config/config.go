package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DataDir     string `env:"DATA_DIR" envDefault:"./data"`

	Languages Languages

	Solana   Solana   `envPrefix:"SOLANA_"`
	Aptos    Aptos    `envPrefix:"APTOS_"`
	Sui      Sui      `envPrefix:"SUI_"`
	EVM      EVM
	DeepSeek DeepSeek `envPrefix:"DEEPSEEK_"`
	Tencent  Tencent  `envPrefix:"TENCENT_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8787"`
}

type Languages struct {
	// Target is the language being learned, Source the learner's native one.
	Target string `env:"TARGET_LANGUAGE" envDefault:"english"`
	Source string `env:"SOURCE_LANGUAGE" envDefault:"japanese"`
}

type Solana struct {
	RPCURL          string `env:"RPC_URL" envDefault:"https://api.mainnet-beta.solana.com"`
	MerchantAddress string `env:"MERCHANT_ADDRESS" envDefault:"8zS5w8MHSDQ4Pc12DZRLYQ78hgEwnBemVJMrfjUN6xXj"`
	USDCMint        string `env:"USDC_MINT" envDefault:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
}

type Aptos struct {
	RPCURL          string `env:"RPC_URL" envDefault:"https://fullnode.mainnet.aptoslabs.com"`
	MerchantAddress string `env:"MERCHANT_ADDRESS"`
	USDCCoinType    string `env:"USDC_COIN_TYPE"`
}

type Sui struct {
	RPCURL          string `env:"RPC_URL" envDefault:"https://fullnode.mainnet.sui.io"`
	MerchantAddress string `env:"MERCHANT_ADDRESS"`
	USDCCoinType    string `env:"USDC_COIN_TYPE"`
}

type EVM struct {
	MerchantAddress string `env:"ETH_MERCHANT_ADDRESS"`
	BaseRPCURL      string `env:"BASE_RPC_URL" envDefault:"https://mainnet.base.org"`
	BaseUSDC        string `env:"USDC_BASE" envDefault:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	ArbitrumRPCURL  string `env:"ARBITRUM_RPC_URL" envDefault:"https://arb1.arbitrum.io/rpc"`
	ArbitrumUSDC    string `env:"USDC_ARBITRUM" envDefault:"0xaf88d065e77c8cC2239327C5EDb3A432268e5831"`
}

type DeepSeek struct {
	APIKey     string `env:"API_KEY"`
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.deepseek.com"`
	PromptDir  string `env:"PROMPT_DIR" envDefault:"./resources/prompts"`
}

type Tencent struct {
	SecretID     string `env:"SECRET_ID"`
	SecretKey    string `env:"SECRET_KEY"`
	SESRegion    string `env:"SES_REGION" envDefault:"ap-hongkong"`
	SESEndpoint  string `env:"SES_ENDPOINT" envDefault:"ses.tencentcloudapi.com"`
	SESSender    string `env:"SES_SENDER"`
	TemplateID   uint64 `env:"SES_TEMPLATE_ID" envDefault:"66878"`
	TemplateIDEN uint64 `env:"SES_TEMPLATE_ID_EN" envDefault:"66878"`
	TemplateIDTH uint64 `env:"SES_TEMPLATE_ID_TH" envDefault:"66672"`
}

type Admin struct {
	Username  string `env:"USERNAME" envDefault:"admin"`
	Password  string `env:"PASSWORD" envDefault:"admin"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me"`
}
