package handler

import (
	"errors"
	"strconv"

	"auctionsystem/internal/config"
	"auctionsystem/internal/repository"
	"auctionsystem/internal/service"
	"auctionsystem/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	userService    *service.UserService
	accountService *service.AccountService
	auctionService *service.AuctionService
	biddingService *service.BiddingService
	rentalService  *service.RentalService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		userService:    service.NewUserService(db),
		accountService: service.NewAccountService(db),
		auctionService: service.NewAuctionService(db, cfg),
		biddingService: service.NewBiddingService(db, rdb, cfg),
		rentalService:  service.NewRentalService(db, cfg),
	}
}

// ============================================================
// 用户相关接口
// ============================================================

// Register 注册用户
// POST /api/v1/user/register
func (h *Handler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, user)
}

// GetUser 查询用户
// GET /api/v1/user/detail?user_id=xxx
func (h *Handler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.BusinessError(c, response.CodeUserNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, user)
}

// ============================================================
// 账户相关接口
// ============================================================

// GetBalance 查询用户余额
// GET /api/v1/account/balance?user_id=xxx
func (h *Handler) GetBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"user_id":            account.UserID,
		"balance":            account.Balance,
		"commission_balance": account.CommissionBalance,
	})
}

// RechargeRequest 充值请求
type RechargeRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Recharge 充值接口（简化版，实际应该走支付渠道）
// POST /api/v1/account/recharge
func (h *Handler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.accountService.Recharge(c.Request.Context(), req.UserID, req.Amount); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"message": "充值成功",
	})
}

// ListLedger 查询账户流水
// GET /api/v1/account/transactions?user_id=xxx&page=1&page_size=10
func (h *Handler) ListLedger(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	entries, total, err := h.accountService.ListLedger(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// 拍品相关接口
// ============================================================

// CreateAuction 创建拍品
// POST /api/v1/auction/create
func (h *Handler) CreateAuction(c *gin.Context) {
	var req service.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.auctionService.CreateAuction(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, item)
}

// GetAuction 查询拍品详情
// GET /api/v1/auction/detail?item_no=xxx
func (h *Handler) GetAuction(c *gin.Context) {
	itemNo := c.Query("item_no")
	if itemNo == "" {
		response.ParamError(c, "item_no 参数不能为空")
		return
	}

	item, err := h.auctionService.GetAuction(c.Request.Context(), itemNo)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			response.BusinessError(c, response.CodeAuctionNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, item)
}

// ListAuctions 查询拍品列表
// GET /api/v1/auction/list?status=OPEN&page=1&page_size=10
// 带 seller_id 参数时查该卖家的拍品
func (h *Handler) ListAuctions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		sellerID, err := strconv.ParseInt(sellerIDStr, 10, 64)
		if err != nil {
			response.ParamError(c, "seller_id 参数错误")
			return
		}
		items, total, err := h.auctionService.ListSellerAuctions(c.Request.Context(), sellerID, page, pageSize)
		if err != nil {
			response.ServerError(c, err.Error())
			return
		}
		response.Success(c, gin.H{
			"list":      items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
		return
	}

	items, total, err := h.auctionService.ListAuctions(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// VerifyAuctionRequest 审核请求
type VerifyAuctionRequest struct {
	ItemNo         string `json:"item_no" binding:"required"`
	CommissionRate string `json:"commission_rate" binding:"required"` // 百分比，支持小数，如 "10.5"
}

// VerifyAuction 管理员审核拍品并设置佣金比例
// POST /api/v1/auction/verify
func (h *Handler) VerifyAuction(c *gin.Context) {
	var req VerifyAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.auctionService.VerifyAuction(c.Request.Context(), req.ItemNo, req.CommissionRate); err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			response.BusinessError(c, response.CodeAuctionNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"message": "审核成功",
	})
}

// DeleteAuction 管理员删除拍品
// POST /api/v1/auction/delete
func (h *Handler) DeleteAuction(c *gin.Context) {
	var req struct {
		ItemNo string `json:"item_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.auctionService.DeleteAuction(c.Request.Context(), req.ItemNo); err != nil {
		switch {
		case errors.Is(err, repository.ErrAuctionNotFound):
			response.BusinessError(c, response.CodeAuctionNotFound, err.Error())
		case errors.Is(err, repository.ErrAuctionSettled):
			response.BusinessError(c, response.CodeAuctionSettled, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{
		"message": "拍品已删除",
	})
}

// ListBids 查询拍品的出价记录
// GET /api/v1/auction/bids?item_no=xxx
func (h *Handler) ListBids(c *gin.Context) {
	itemNo := c.Query("item_no")
	if itemNo == "" {
		response.ParamError(c, "item_no 参数不能为空")
		return
	}

	bids, err := h.biddingService.ListBids(c.Request.Context(), itemNo)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			response.BusinessError(c, response.CodeAuctionNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, bids)
}

// ============================================================
// 出价相关接口
// ============================================================

// PlaceBid 出价
// POST /api/v1/bid/place
//
// 【关键点】出价被拒绝时必须带上具体原因：
// 拍品不存在 / 竞拍已截止 / 出价不满足加价幅度，三种情况业务码不同
func (h *Handler) PlaceBid(c *gin.Context) {
	var req service.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.biddingService.PlaceBid(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAuctionNotFound):
			response.BusinessError(c, response.CodeAuctionNotFound, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			response.BusinessError(c, response.CodeUserNotFound, err.Error())
		case errors.Is(err, service.ErrAuctionNotOpen):
			response.BusinessError(c, response.CodeAuctionClosed, err.Error())
		case errors.Is(err, service.ErrBidTooLow):
			response.BusinessError(c, response.CodeBidTooLow, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, result)
}

// ============================================================
// 租赁相关接口
// ============================================================

// CreateRentalProduct 创建租赁商品
// POST /api/v1/rental/product/create
func (h *Handler) CreateRentalProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	product, err := h.rentalService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, product)
}

// ListRentalProducts 查询租赁商品列表
// GET /api/v1/rental/list?page=1&page_size=10
func (h *Handler) ListRentalProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	products, total, err := h.rentalService.ListProducts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ReserveRental 租赁下单
// POST /api/v1/rental/reserve
func (h *Handler) ReserveRental(c *gin.Context) {
	var req service.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.rentalService.Reserve(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.BusinessError(c, response.CodeNotFound, err.Error())
		case errors.Is(err, repository.ErrStockNotEnough):
			response.BusinessError(c, response.CodeStockNotEnough, err.Error())
		case errors.Is(err, repository.ErrBalanceNotEnough):
			response.BusinessError(c, response.CodeBalanceNotEnough, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, result)
}

// ReturnRental 归还
// POST /api/v1/rental/return
func (h *Handler) ReturnRental(c *gin.Context) {
	var req struct {
		RentalNo string `json:"rental_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.rentalService.Return(c.Request.Context(), req.RentalNo); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"message": "归还成功",
	})
}
