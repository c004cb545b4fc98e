package model

import "time"

// Provider はシグナル配信プロバイダーを表す。
type Provider struct {
	ID                   string    `json:"id" yaml:"id"`
	Name                 string    `json:"name" yaml:"name"`
	WinRate              int       `json:"winRate" yaml:"winRate"`
	TradesLastMonth      int       `json:"tradesLastMonth" yaml:"tradesLastMonth"`
	SignalTypes          []string  `json:"signalTypes" yaml:"signalTypes"`
	SubscriptionPrice    int       `json:"subscriptionPrice" yaml:"subscriptionPrice"`
	Currency             string    `json:"currency" yaml:"currency"`
	Rating               float64   `json:"rating" yaml:"rating"`
	Followers            int       `json:"followers" yaml:"followers"`
	Description          string    `json:"description" yaml:"description"`
	RiskLevel            string    `json:"riskLevel" yaml:"riskLevel"`
	AvgPipsProfitMonthly int       `json:"avgPipsProfitMonthly" yaml:"avgPipsProfitMonthly"`
	Verified             bool      `json:"verified" yaml:"verified"`
	AffiliateURL         string    `json:"affiliateUrl" yaml:"affiliateUrl"`
	CreatedAt            time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt            time.Time `json:"updatedAt" yaml:"-"`
}

// ProviderPatch はプロバイダーの部分更新。nilのフィールドは変更しない。
type ProviderPatch struct {
	Name                 *string   `json:"name"`
	WinRate              *int      `json:"winRate"`
	TradesLastMonth      *int      `json:"tradesLastMonth"`
	SignalTypes          *[]string `json:"signalTypes"`
	SubscriptionPrice    *int      `json:"subscriptionPrice"`
	Currency             *string   `json:"currency"`
	Rating               *float64  `json:"rating"`
	Followers            *int      `json:"followers"`
	Description          *string   `json:"description"`
	RiskLevel            *string   `json:"riskLevel"`
	AvgPipsProfitMonthly *int      `json:"avgPipsProfitMonthly"`
	Verified             *bool     `json:"verified"`
	AffiliateURL         *string   `json:"affiliateUrl"`
}

// ProviderFilter はプロバイダー一覧の絞り込み条件。
// 空文字のフィールドは条件に含めない。
type ProviderFilter struct {
	SignalType string
	RiskLevel  string
	MinPrice   *int
	MaxPrice   *int
	Search     string
	Limit      int
	Skip       int
}

// Broker はFX/CFDブローカーを表す。
type Broker struct {
	ID                 string    `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	AccountTypes       []string  `json:"accountTypes" yaml:"accountTypes"`
	MinDeposit         int       `json:"minDeposit" yaml:"minDeposit"`
	MaxLeverage        string    `json:"maxLeverage" yaml:"maxLeverage"`
	SpreadsFrom        float64   `json:"spreadsFrom" yaml:"spreadsFrom"`
	Currency           string    `json:"currency" yaml:"currency"`
	Bonus              *string   `json:"bonus" yaml:"bonus"`
	Rating             float64   `json:"rating" yaml:"rating"`
	Regulation         []string  `json:"regulation" yaml:"regulation"`
	Instruments        []string  `json:"instruments" yaml:"instruments"`
	PlatformsSupported []string  `json:"platformsSupported" yaml:"platformsSupported"`
	WithdrawalTime     string    `json:"withdrawalTime" yaml:"withdrawalTime"`
	CustomerSupport    string    `json:"customerSupport" yaml:"customerSupport"`
	Verified           bool      `json:"verified" yaml:"verified"`
	AffiliateURL       string    `json:"affiliateUrl" yaml:"affiliateUrl"`
	CreatedAt          time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt          time.Time `json:"updatedAt" yaml:"-"`
}

// BrokerPatch はブローカーの部分更新。nilのフィールドは変更しない。
type BrokerPatch struct {
	Name               *string   `json:"name"`
	AccountTypes       *[]string `json:"accountTypes"`
	MinDeposit         *int      `json:"minDeposit"`
	MaxLeverage        *string   `json:"maxLeverage"`
	SpreadsFrom        *float64  `json:"spreadsFrom"`
	Currency           *string   `json:"currency"`
	Bonus              *string   `json:"bonus"`
	Rating             *float64  `json:"rating"`
	Regulation         *[]string `json:"regulation"`
	Instruments        *[]string `json:"instruments"`
	PlatformsSupported *[]string `json:"platformsSupported"`
	WithdrawalTime     *string   `json:"withdrawalTime"`
	CustomerSupport    *string   `json:"customerSupport"`
	Verified           *bool     `json:"verified"`
	AffiliateURL       *string   `json:"affiliateUrl"`
}

// BrokerFilter はブローカー一覧の絞り込み条件。
type BrokerFilter struct {
	InstrumentType string
	MaxMinDeposit  *int // minDeposit <= MaxMinDeposit
	Regulation     string
	Search         string
	Limit          int
	Skip           int
}

// Testimonial は利用者の推薦文を表す。
type Testimonial struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Role      string    `json:"role" yaml:"role"`
	Avatar    string    `json:"avatar" yaml:"avatar"`
	Rating    int       `json:"rating" yaml:"rating"`
	Text      string    `json:"text" yaml:"text"`
	Location  string    `json:"location" yaml:"location"`
	Approved  bool      `json:"approved" yaml:"approved"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

// TestimonialPatch は推薦文の部分更新。
type TestimonialPatch struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Avatar   *string `json:"avatar"`
	Rating   *int    `json:"rating"`
	Text     *string `json:"text"`
	Location *string `json:"location"`
	Approved *bool   `json:"approved"`
}

// TestimonialFilter は推薦文一覧の絞り込み条件。
// Approvedがnilの場合は承認状態で絞り込まない。
type TestimonialFilter struct {
	Approved *bool
	Limit    int
	Skip     int
}
