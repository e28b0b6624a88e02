// common.go
//
// Network boot configuration manager with weighted host profiles and one-shot alias overrides
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of bootmgr.
// bootmgr is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// bootmgr is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with bootmgr.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"

	"github.com/localnerve/bootmgr/internal/types"
)

// pathParam returns the URL-unescaped value of a route parameter. Host
// patterns arrive escaped since they may carry '[', ',' and '/'.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	raw := c.Params(key)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", types.NewValidationError("Invalid %s '%s'", key, raw)
	}
	// Params share the request buffer, which fasthttp reuses.
	return fiberutils.CopyString(value), nil
}

// parseBody decodes a JSON request body into out. An empty body leaves out
// untouched, so PATCH requests without a body change nothing.
func parseBody(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return types.NewValidationError("Invalid JSON body: %s", err.Error())
	}
	return nil
}
