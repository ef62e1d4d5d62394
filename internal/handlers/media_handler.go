package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/media"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

// multipartOverhead is the slack allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

func registerMediaRoutes(admin *gin.RouterGroup, h *routes) {
	g := admin.Group("/products/:id/media")

	g.GET("", func(c *gin.Context) {
		images, err := h.Catalog.ListImages(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"media": images})
	})

	g.POST("/link", func(c *gin.Context) {
		var req validation.MediaLinkRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		img, err := h.Catalog.AddImage(c.Request.Context(), c.Param("id"), req.ImageURL, "", req.IsPrimary)
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusCreated, img)
	})

	g.POST("/upload", func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		if !h.Media.Enabled() {
			writeError(c, media.ErrDisabled)
			return
		}
		// 404 before touching the bucket
		if _, err := h.Catalog.Get(ctx, id); err != nil {
			writeError(c, err)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Media.MaxBytes()+multipartOverhead)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(c, media.ErrTooLarge)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file", "detail": err.Error()})
			return
		}
		primary, _ := strconv.ParseBool(c.PostForm("is_primary"))

		f, err := fh.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		defer f.Close()

		obj, err := h.Media.Upload(ctx, id, f)
		if err != nil {
			writeError(c, err)
			return
		}
		img, err := h.Catalog.AddImage(ctx, id, obj.URL, obj.Key, primary)
		if err != nil {
			if derr := h.Media.Delete(ctx, obj.Key); derr != nil {
				log.Printf("[http] cleanup object key=%s: %v", obj.Key, derr)
			}
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusCreated, img)
	})

	g.PATCH("/:mediaId", func(c *gin.Context) {
		var req validation.MediaUpdateRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		img, err := h.Catalog.UpdateImage(c.Request.Context(), c.Param("id"), c.Param("mediaId"), *req.IsPrimary)
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, img)
	})

	g.PATCH("/:mediaId/primary", func(c *gin.Context) {
		images, err := h.Catalog.SetPrimaryImage(c.Request.Context(), c.Param("id"), c.Param("mediaId"))
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, gin.H{"media": images})
	})

	g.DELETE("/:mediaId", func(c *gin.Context) {
		ctx := c.Request.Context()
		img, err := h.Catalog.RemoveImage(ctx, c.Param("id"), c.Param("mediaId"))
		if err != nil {
			writeError(c, err)
			return
		}
		h.deleteStoredImage(ctx, img)
		h.invalidateStorefront()
		c.JSON(http.StatusOK, gin.H{"deleted": img.ID})
	})
}

